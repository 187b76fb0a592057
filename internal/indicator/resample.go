package indicator

import "signalforge/internal/model"

// Resample compresses the candle series by the given factor, merging
// each group of factor consecutive candles into one. Partial trailing
// groups are dropped so every resampled candle covers a full span.
func Resample(candles []model.Candle, factor int) []model.Candle {
	if factor <= 1 || len(candles) < factor {
		return candles
	}

	out := make([]model.Candle, 0, len(candles)/factor)
	for i := 0; i+factor <= len(candles); i += factor {
		group := candles[i : i+factor]
		merged := model.Candle{
			Timestamp: group[0].Timestamp,
			Open:      group[0].Open,
			High:      group[0].High,
			Low:       group[0].Low,
			Close:     group[len(group)-1].Close,
		}
		for _, c := range group {
			if c.High > merged.High {
				merged.High = c.High
			}
			if c.Low < merged.Low {
				merged.Low = c.Low
			}
			merged.Volume += c.Volume
		}
		out = append(out, merged)
	}
	return out
}
