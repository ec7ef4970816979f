package overtime

// Classify maps one worked minute to its band.
//
//	                      working day   non-working day
//	neither               standard      premium_a
//	night only            premium_a     HolidayNightOnlyBand
//	over threshold only   premium_a     premium_b
//	night and over        premium_b     premium_c
func Classify(p Policy, night, nonWorking, over bool) Band {
	if !nonWorking {
		switch {
		case night && over:
			return BandPremiumB
		case night || over:
			return BandPremiumA
		default:
			return BandStandard
		}
	}

	switch {
	case night && over:
		return BandPremiumC
	case night:
		return p.HolidayNightOnlyBand
	case over:
		return BandPremiumB
	default:
		return BandPremiumA
	}
}
