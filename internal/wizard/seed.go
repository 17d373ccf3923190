package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/dealerhubhq/dealerhub-backend/pkg/enums"
)

const (
	stockNumberCounter = "stock_number"
	dealNumberCounter  = "deal_number"
)

// VehicleDraftFactory seeds empty vehicle drafts with a generated stock
// number and unit defaults.
func VehicleDraftFactory(seq Sequencer) func(ctx context.Context) (VehicleFormData, error) {
	return func(ctx context.Context) (VehicleFormData, error) {
		n, err := seq.NextSequence(ctx, stockNumberCounter)
		if err != nil {
			return VehicleFormData{}, fmt.Errorf("generate stock number: %w", err)
		}
		return VehicleFormData{
			StockNumber:  fmt.Sprintf("STK-%06d", n),
			OdometerUnit: enums.OdometerUnitKilometers,
		}, nil
	}
}

// DealDraftFactory seeds empty deal drafts with a generated deal number and
// sane payment defaults.
func DealDraftFactory(seq Sequencer) func(ctx context.Context) (DealFormData, error) {
	return func(ctx context.Context) (DealFormData, error) {
		n, err := seq.NextSequence(ctx, dealNumberCounter)
		if err != nil {
			return DealFormData{}, fmt.Errorf("generate deal number: %w", err)
		}
		return DealFormData{
			DealNumber:       fmt.Sprintf("DL-%d-%05d", time.Now().Year(), n),
			FinancingType:    enums.FinancingTypeCash,
			PaymentFrequency: enums.PaymentFrequencyMonthly,
		}, nil
	}
}
