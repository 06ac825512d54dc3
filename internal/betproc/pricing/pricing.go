package pricing

import "math"

// ComputeImplied converte pools em centavos para preços implícitos (share do pool).
// Pool total zerado devolve distribuição uniforme; arredonda em 4 casas.
func ComputeImplied(pools []int64) []float64 {
	out := make([]float64, len(pools))
	if len(pools) == 0 {
		return out
	}

	var total int64
	for _, p := range pools {
		total += p
	}

	if total == 0 {
		uniform := round4(1.0 / float64(len(pools)))
		for i := range out {
			out[i] = uniform
		}
		return out
	}

	for i, p := range pools {
		out[i] = round4(float64(p) / float64(total))
	}
	return out
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
