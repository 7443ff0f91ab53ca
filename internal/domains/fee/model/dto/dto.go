package dto

import (
	"fleet/internal/domains/fee/model"
	"sort"
)

type FeeResponse struct {
	FeeType string  `json:"fee_type"`
	Amount  float64 `json:"amount"`
}

type GetFeesResponse struct {
	Fees []FeeResponse `json:"fees"`
}

func (r *GetFeesResponse) FromSchedule(schedule model.Schedule) {
	r.Fees = make([]FeeResponse, 0, len(schedule))
	for feeType, amount := range schedule {
		r.Fees = append(r.Fees, FeeResponse{FeeType: feeType, Amount: amount})
	}

	sort.Slice(r.Fees, func(i, j int) bool {
		return r.Fees[i].FeeType < r.Fees[j].FeeType
	})
}
