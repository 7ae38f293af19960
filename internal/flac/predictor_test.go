package flac

import "testing"

func TestInvertFixedOrders(t *testing.T) {
	t.Parallel()

	for order := range 5 {
		warmup := []int64{10, -7, 3, 2, -1}[:order]
		residual := []int64{0, 4, -2, 1, 6, -3, 2, 0}

		buf := append(append([]int64{}, warmup...), residual...)

		expected := referenceFixed(warmup, residual, order)

		invertFixed(buf, order)

		for i, want := range expected {
			if buf[order+i] != want {
				t.Errorf("order %d: sample %d = %d, want %d", order, i, buf[order+i], want)
			}
		}
	}
}

// referenceFixed recomputes the fixed predictor into a separate buffer,
// reading residuals from their own slice instead of reconstructing in place.
func referenceFixed(warmup, residual []int64, order int) []int64 {
	coeffs := fixedCoefficients[order]
	full := append(append([]int64{}, warmup...), make([]int64, len(residual))...)

	for i := order; i < len(full); i++ {
		var pred int64
		for j := range order {
			pred += full[i-1-j] * coeffs[j]
		}

		full[i] = pred + residual[i-order]
	}

	return full[order:]
}

func TestInvertLPCRoundTrip(t *testing.T) {
	t.Parallel()

	order := 2
	coeffs := []int16{3, -1}
	shift := uint8(2)
	warmup := []int64{100, 110}

	// Build a signal whose residuals (after quantized prediction) are known,
	// then verify invertLPC reconstructs the original signal exactly.
	original := []int64{100, 110, 125, 140, 150, 158}
	residual := make([]int64, len(original)-order)

	for i := order; i < len(original); i++ {
		var sum int64
		for j := range order {
			sum += original[i-1-j] * int64(coeffs[j])
		}

		residual[i-order] = original[i] - sum>>shift
	}

	buf := append(append([]int64{}, warmup...), residual...)

	invertLPC(buf, order, coeffs, shift)

	for i, want := range original {
		if buf[i] != want {
			t.Errorf("sample %d = %d, want %d", i, buf[i], want)
		}
	}
}

func TestInvertLPCZeroShift(t *testing.T) {
	t.Parallel()

	order := 1
	coeffs := []int16{1}
	buf := []int64{5, 0, 0, 0}
	residual := []int64{3, 1, -2}

	copy(buf[order:], residual)
	invertLPC(buf, order, coeffs, 0)

	want := []int64{5, 8, 9, 7}

	for i, w := range want {
		if buf[i] != w {
			t.Errorf("sample %d = %d, want %d", i, buf[i], w)
		}
	}
}
