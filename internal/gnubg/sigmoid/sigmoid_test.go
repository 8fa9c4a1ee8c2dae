package sigmoid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Sigmoid(t *testing.T) {
	type args struct {
		xin float32
	}
	tests := []struct {
		name string
		args args
		want float32
	}{
		// function produces reverse sigmoid
		{"should calculate -10", args{-10}, 0.9999498},
		{"should calculate -1", args{-1}, 0.7310586},
		{"should calculate 0", args{0}, 0.5},
		{"should calculate 1", args{1}, 0.26894143},
		{"should calculate 10", args{10}, 5.0172166e-05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sigmoid(tt.args.xin); got != tt.want {
				t.Errorf("Sigmoid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_Sigmoid_saturation(t *testing.T) {
	assert.Equal(t, float32(1.0)/float32(19931.370438230298), Sigmoid(10))
	assert.Equal(t, float32(1.0)/float32(19931.370438230298), Sigmoid(1e6))
	assert.Equal(t, float32(19930.370438230298)/float32(19931.370438230298), Sigmoid(-10))
	assert.Equal(t, float32(19930.370438230298)/float32(19931.370438230298), Sigmoid(-1e6))
}

func Test_Sigmoid_symmetry(t *testing.T) {
	for x := float32(-12); x <= 12; x += 0.0137 {
		assert.InDelta(t, 1.0, Sigmoid(x)+Sigmoid(-x), 1e-6, "x = %v", x)
	}
}

func Test_Sigmoid_accuracy(t *testing.T) {
	for x := float32(-9.99); x < 10; x += 0.01 {
		want := 1 / (1 + math.Exp(float64(x)))
		assert.InDelta(t, want, Sigmoid(x), 2e-3, "x = %v", x)
	}
}
