package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// InputSize は 5x5 窓の特徴量の数です
const InputSize = 25

var ErrBadShape = errors.New("weights have inconsistent shapes")

// 重みデータの構造体（JSONと同じ構造）
type Weights struct {
	Fc1Weight [][]float64 `json:"fc1_weight"`
	Fc1Bias   []float64   `json:"fc1_bias"`
	Fc2Weight [][]float64 `json:"fc2_weight"`
	Fc2Bias   []float64   `json:"fc2_bias"`
	Fc3Weight [][]float64 `json:"fc3_weight"`
	Fc3Bias   []float64   `json:"fc3_bias"`
}

// Network は推論を行うための構造体
type Network struct {
	w Weights
}

// NewNetwork はJSONデータからネットワークを初期化します
func NewNetwork(jsonData []byte) (*Network, error) {
	var w Weights
	if err := json.Unmarshal(jsonData, &w); err != nil {
		return nil, fmt.Errorf("decode weights: %w", err)
	}
	if err := w.validate(); err != nil {
		return nil, err
	}
	return &Network{w: w}, nil
}

// LoadFile は重みファイルを読み込みます
func LoadFile(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	return NewNetwork(data)
}

// validate は 25 → fc1 → fc2 → 1 の形になっているか確認します
func (w Weights) validate() error {
	layers := []struct {
		name   string
		weight [][]float64
		bias   []float64
	}{
		{"fc1", w.Fc1Weight, w.Fc1Bias},
		{"fc2", w.Fc2Weight, w.Fc2Bias},
		{"fc3", w.Fc3Weight, w.Fc3Bias},
	}
	in := InputSize
	for _, l := range layers {
		if len(l.weight) == 0 || len(l.weight) != len(l.bias) {
			return fmt.Errorf("%s: %d rows, %d biases: %w", l.name, len(l.weight), len(l.bias), ErrBadShape)
		}
		for _, row := range l.weight {
			if len(row) != in {
				return fmt.Errorf("%s: row width %d, want %d: %w", l.name, len(row), in, ErrBadShape)
			}
		}
		in = len(l.weight)
	}
	if in != 1 {
		return fmt.Errorf("fc3: %d outputs, want 1: %w", in, ErrBadShape)
	}
	return nil
}

// Predict は入力(25個の数値)を受け取り、地雷確率(0.0~1.0)を返します
func (n *Network) Predict(input []float64) float64 {
	// Layer 1
	out1 := relu(addBias(matVecMul(n.w.Fc1Weight, input), n.w.Fc1Bias))

	// Layer 2
	out2 := relu(addBias(matVecMul(n.w.Fc2Weight, out1), n.w.Fc2Bias))

	// Layer 3 (Output)
	out3 := addBias(matVecMul(n.w.Fc3Weight, out2), n.w.Fc3Bias)

	// Sigmoidで0~1の確率に変換
	return sigmoid(out3[0])
}

// --- 以下、行列演算などのヘルパー関数 ---

// 行列とベクトルの掛け算
func matVecMul(mat [][]float64, vec []float64) []float64 {
	result := make([]float64, len(mat))
	for i, row := range mat {
		sum := 0.0
		for j, v := range row {
			sum += v * vec[j]
		}
		result[i] = sum
	}
	return result
}

// バイアスの加算
func addBias(vec []float64, bias []float64) []float64 {
	result := make([]float64, len(vec))
	for i := range vec {
		result[i] = vec[i] + bias[i]
	}
	return result
}

func relu(vec []float64) []float64 {
	result := make([]float64, len(vec))
	for i, v := range vec {
		result[i] = math.Max(0, v)
	}
	return result
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
