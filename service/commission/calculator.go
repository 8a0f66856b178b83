package commission

import (
	"gitlab.com/vendalink-commerce/affiliate_api/config"
	"gitlab.com/vendalink-commerce/affiliate_api/model"
)

// Line - one computed commission line item for a single beneficiary
type Line struct {
	BeneficiaryID   uint64
	BeneficiaryType model.BeneficiaryType
	Level           model.CommissionLevel
	AmountCents     int64
}

// Calculator splits a fixed percentage of every confirmed sale between the
// populated ancestor levels and the two fixed house accounts. Pure, no I/O.
//
// The per-line round-half-up at the cent may leave the total up to 1 cent away
// from round(amount * total rate). That tolerance is deliberate; do not add a
// corrective remainder line.
type Calculator struct {
	cfg config.ReferralConfig
}

// NewCalculator godoc
func NewCalculator(cfg config.ReferralConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

const bpsDenominator = 10000

// roundBps computes round half up of amountCents * bps / 10000
func roundBps(amountCents int64, bps int64) int64 {
	return (amountCents*bps + bpsDenominator/2) / bpsDenominator
}

// Calculate returns one line per beneficiary with a non zero amount.
//
// The chain holds 0 to 3 ancestors of the purchasing affiliate, nearest
// first. The rate of every unpopulated level is redistributed equally between
// the two house beneficiaries and added to their base rate before rounding,
// never to populated ancestor levels. A non positive sale amount yields no
// lines.
func (calc *Calculator) Calculate(saleAmountCents int64, chain []model.ChainEntry) []Line {
	if saleAmountCents <= 0 {
		return []Line{}
	}

	levelRates := map[model.CommissionLevel]int64{
		model.CommissionLevel_1: int64(calc.cfg.L1Bps),
		model.CommissionLevel_2: int64(calc.cfg.L2Bps),
		model.CommissionLevel_3: int64(calc.cfg.L3Bps),
	}

	lines := make([]Line, 0, len(chain)+2)
	unusedBps := int64(0)
	populated := map[model.CommissionLevel]uint64{}
	for _, entry := range chain {
		populated[model.CommissionLevel(entry.Level)] = entry.AffiliateID
	}

	for _, level := range []model.CommissionLevel{model.CommissionLevel_1, model.CommissionLevel_2, model.CommissionLevel_3} {
		beneficiary, ok := populated[level]
		if !ok {
			unusedBps += levelRates[level]
			continue
		}
		amount := roundBps(saleAmountCents, levelRates[level])
		if amount == 0 {
			continue
		}
		lines = append(lines, Line{
			BeneficiaryID:   beneficiary,
			BeneficiaryType: model.BeneficiaryType_Affiliate,
			Level:           level,
			AmountCents:     amount,
		})
	}

	houseBps := int64(calc.cfg.HouseBaseBps) + unusedBps/2
	for _, houseAccount := range []uint64{calc.cfg.HouseAccountA, calc.cfg.HouseAccountB} {
		amount := roundBps(saleAmountCents, houseBps)
		if amount == 0 {
			continue
		}
		lines = append(lines, Line{
			BeneficiaryID:   houseAccount,
			BeneficiaryType: model.BeneficiaryType_House,
			Level:           model.CommissionLevel_House,
			AmountCents:     amount,
		})
	}

	return lines
}

// TargetTotalCents - the exact commission target for a sale, round half up
func (calc *Calculator) TargetTotalCents(saleAmountCents int64) int64 {
	if saleAmountCents <= 0 {
		return 0
	}
	return roundBps(saleAmountCents, int64(calc.cfg.TotalRateBps))
}
