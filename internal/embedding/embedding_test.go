package embedding

import (
	"math"
	"testing"
)

func TestReconcileDimension(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		dim  int
		want []float32
	}{
		{
			name: "exact length preserved",
			in:   []float32{0.1, 0.2, 0.3, 0.4},
			dim:  4,
			want: []float32{0.1, 0.2, 0.3, 0.4},
		},
		{
			name: "longer truncated",
			in:   []float32{1, 2, 3, 4, 5},
			dim:  3,
			want: []float32{1, 2, 3},
		},
		{
			name: "shorter zero padded",
			in:   []float32{7, 8, 9},
			dim:  5,
			want: []float32{7, 8, 9, 0, 0},
		},
		{
			name: "nil input all zeros",
			in:   nil,
			dim:  3,
			want: []float32{0, 0, 0},
		},
		{
			name: "non-finite values zeroed",
			in:   []float32{1, float32(math.NaN()), float32(math.Inf(1)), 4},
			dim:  4,
			want: []float32{1, 0, 0, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReconcileDimension(tt.in, tt.dim)
			if len(got) != tt.dim {
				t.Fatalf("length = %d, want %d", len(got), tt.dim)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReconcileDimensionAlwaysFixedLength(t *testing.T) {
	const dim = 16
	for _, n := range []int{0, 1, 8, 16, 17, 100} {
		v := make([]float32, n)
		if got := ReconcileDimension(v, dim); len(got) != dim {
			t.Errorf("input length %d: result length = %d, want %d", n, len(got), dim)
		}
	}
}

func TestDecodeVector(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []float32
		wantErr bool
	}{
		{
			name: "flat vector",
			body: `[0.1, 0.2, 0.3]`,
			want: []float32{0.1, 0.2, 0.3},
		},
		{
			name: "matrix mean pooled",
			body: `[[1, 2], [3, 4]]`,
			want: []float32{2, 3},
		},
		{
			name: "matrix single row",
			body: `[[5, 6, 7]]`,
			want: []float32{5, 6, 7},
		},
		{
			name: "wrapped embedding field",
			body: `{"embedding": [1, 2, 3]}`,
			want: []float32{1, 2, 3},
		},
		{
			name: "wrapped data field",
			body: `{"data": [4, 5]}`,
			want: []float32{4, 5},
		},
		{
			name: "wrapped embeddings field with matrix",
			body: `{"embeddings": [[2, 4], [6, 8]]}`,
			want: []float32{4, 6},
		},
		{name: "empty vector", body: `[]`, wantErr: true},
		{name: "empty matrix", body: `[[]]`, wantErr: true},
		{name: "unknown object", body: `{"vectors": [1, 2]}`, wantErr: true},
		{name: "scalar", body: `42`, wantErr: true},
		{name: "garbage", body: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeVector([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("decodeVector(%s) = %v, want error", tt.body, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeVector(%s) error: %v", tt.body, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("length = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-6 {
					t.Errorf("got[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMeanPoolRaggedRows(t *testing.T) {
	// Width comes from the first row; short rows contribute zeros.
	got := meanPool([][]float32{{2, 4}, {4}})
	want := []float32{3, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
