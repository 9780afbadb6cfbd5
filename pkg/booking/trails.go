package booking

import "github.com/aretw0/ticketflow/pkg/domain"

// Trails returns the built-in example trails.
func Trails() []domain.Trail {
	return []domain.Trail{
		{Seq: "auth select avail_ok choose details pay_ok", Expected: domain.VerdictAccept},
		{Seq: "search auth select search avail_ok choose search details pay_ok", Expected: domain.VerdictAccept},
		{Seq: "auth select avail_ok search choose details pay_fail pay_ok", Expected: domain.VerdictAccept},
		{Seq: "auth search select search avail_ok choose details pay_ok", Expected: domain.VerdictAccept},
		{Seq: "search search auth select avail_ok choose details search pay_ok", Expected: domain.VerdictAccept},
		{Seq: "select avail_ok choose details pay_ok", Expected: domain.VerdictReject},
		{Seq: "auth avail_ok choose details pay_ok", Expected: domain.VerdictReject},
		{Seq: "auth select avail_no", Expected: domain.VerdictReject},
		{Seq: "auth select avail_ok details pay_ok", Expected: domain.VerdictReject},
		{Seq: "auth select avail_ok choose details pay_fail", Expected: domain.VerdictReject},
		{Seq: "auth select avail_ok choose details pay_fail search", Expected: domain.VerdictReject},
		{Seq: "auth select avail_ok choose cancel", Expected: domain.VerdictReject},
		// An issued ticket is final: trailing input does not revoke it.
		{Seq: "auth select avail_ok choose details pay_ok select", Expected: domain.VerdictAccept},
		{Seq: "auth select avail_no search select avail_ok choose details pay_ok", Expected: domain.VerdictReject},
	}
}
