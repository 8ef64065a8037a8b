package digits_test

import (
	"math/big"
	"testing"

	"github.com/agbru/bigadd/internal/digits"
	"github.com/agbru/bigadd/internal/testutil"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func toBig(t testing.TB, s digits.Sequence) *big.Int {
	t.Helper()
	if len(s) == 0 {
		return new(big.Int)
	}
	v, ok := new(big.Int).SetString(s.String(), 10)
	if !ok {
		t.Fatalf("cannot parse %q", s.String())
	}
	return v
}

func TestAddSlice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		a, b      string
		wantSum   string
		wantCarry int
	}{
		{"simple", "123", "456", "579", 0},
		{"carry out", "999", "001", "000", 1},
		{"single digits with carry", "7", "5", "2", 1},
		{"zeros", "000", "000", "000", 0},
		{"inner carries", "0909", "0191", "1100", 0},
		{"empty slices", "", "", "", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var a, b digits.Sequence
			if tt.a != "" {
				a, b = digits.MustParse(tt.a), digits.MustParse(tt.b)
			}
			sum, carry := digits.AddSlice(a, b)
			if sum.String() != tt.wantSum || carry != tt.wantCarry {
				t.Errorf("AddSlice(%s, %s) = (%s, %d), want (%s, %d)",
					tt.a, tt.b, sum, carry, tt.wantSum, tt.wantCarry)
			}
		})
	}
}

func TestAddSliceDoesNotModifyInputs(t *testing.T) {
	t.Parallel()
	a := digits.MustParse("989")
	b := digits.MustParse("019")
	digits.AddSlice(a, b)
	if a.String() != "989" || b.String() != "019" {
		t.Errorf("inputs modified: a=%s b=%s", a, b)
	}
}

func TestAddSlicePanicsOnContractViolation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b digits.Sequence
	}{
		{"length mismatch", digits.Sequence{1, 2}, digits.Sequence{1}},
		{"digit above range", digits.Sequence{10}, digits.Sequence{0}},
		{"negative digit", digits.Sequence{0}, digits.Sequence{-1}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			digits.AddSlice(tt.a, tt.b)
		})
	}
}

func TestApplyCarry(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		r         string
		carryIn   int
		want      string
		wantCarry int
	}{
		{"no carry leaves slice untouched", "459", 0, "459", 0},
		{"carry absorbed", "459", 1, "460", 0},
		{"carry ripples through", "999", 1, "000", 1},
		{"partial ripple", "199", 1, "200", 0},
		{"empty slice passes carry", "", 1, "", 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var r digits.Sequence
			if tt.r != "" {
				r = digits.MustParse(tt.r)
			}
			carry := digits.ApplyCarry(r, tt.carryIn)
			if r.String() != tt.want || carry != tt.wantCarry {
				t.Errorf("ApplyCarry(%s, %d) = (%s, %d), want (%s, %d)",
					tt.r, tt.carryIn, r, carry, tt.want, tt.wantCarry)
			}
		})
	}
}

func TestApplyCarryRejectsBadCarry(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for carry 2")
		}
	}()
	digits.ApplyCarry(digits.Sequence{1}, 2)
}

func TestPropagatesAndCarryOut(t *testing.T) {
	t.Parallel()
	if !digits.Propagates(digits.MustParse("999")) {
		t.Error("all nines should propagate")
	}
	if digits.Propagates(digits.MustParse("989")) {
		t.Error("989 should not propagate")
	}
	if !digits.Propagates(nil) {
		t.Error("empty slice should propagate")
	}
	nines := digits.Sequence(testutil.AllNines(1000))
	if !digits.Propagates(nines) || digits.ApplyCarry(nines, 1) != 1 || nines[0] != 0 || nines[999] != 0 {
		t.Error("a carry into a thousand nines should ripple out")
	}
	tests := []struct {
		local, in int
		prop      bool
		want      int
	}{
		{0, 0, false, 0},
		{0, 1, false, 0},
		{0, 1, true, 1},
		{0, 0, true, 0},
		{1, 0, false, 1},
		{1, 1, false, 1},
	}
	for _, tt := range tests {
		if got := digits.CarryOut(tt.local, tt.prop, tt.in); got != tt.want {
			t.Errorf("CarryOut(%d, %v, %d) = %d, want %d", tt.local, tt.prop, tt.in, got, tt.want)
		}
	}
}

// TestKernel_PropertyBased checks that slice addition followed by carry
// application agrees with arbitrary-precision addition and that the combined
// carry out of a slice never exceeds one.
func TestKernel_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("AddSlice+ApplyCarry matches big.Int addition", prop.ForAll(
		func(seed int64, n int, carryIn int) bool {
			a := digits.Sequence(testutil.RandomDigits(seed, n, false))
			b := digits.Sequence(testutil.RandomDigits(seed+1, n, false))

			sum, local := digits.AddSlice(a, b)
			predicted := digits.CarryOut(local, digits.Propagates(sum), carryIn)
			applied := digits.ApplyCarry(sum, carryIn)
			if local+applied > 1 || applied != predicted && local == 0 {
				return false
			}

			want := new(big.Int).Add(toBig(t, a), toBig(t, b))
			want.Add(want, big.NewInt(int64(carryIn)))
			got := toBig(t, sum)
			if local+applied == 1 {
				got.Add(got, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil))
			}
			return got.Cmp(want) == 0
		},
		gen.Int64(),
		gen.IntRange(1, 200),
		gen.IntRange(0, 1),
	))

	properties.TestingRun(t)
}

func FuzzAddSlice(f *testing.F) {
	f.Add("999", "001")
	f.Add("0", "0")
	f.Add("123456789", "987654321")

	f.Fuzz(func(t *testing.T, x, y string) {
		a, errA := digits.Parse(x)
		b, errB := digits.Parse(y)
		if errA != nil || errB != nil || len(a) != len(b) || len(a) > 1000 {
			return
		}
		sum, carry := digits.AddSlice(a, b)
		want := new(big.Int).Add(toBig(t, a), toBig(t, b))
		got := toBig(t, digits.Result{Digits: sum, Overflow: carry}.Sequence())
		if got.Cmp(want) != 0 {
			t.Errorf("%s + %s: got %s, want %s", x, y, got, want)
		}
	})
}
