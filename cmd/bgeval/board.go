package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseLayout reads a side as comma separated point:count pairs, e.g.
// "6:5,8:3,13:5,bar:1". Points run 1..24 from the side's own point of view.
func parseLayout(s string) ([25]int, error) {
	var an [25]int

	s = strings.TrimSpace(s)
	if s == "" {
		return an, nil
	}

	for _, pair := range strings.Split(s, ",") {
		point, count, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return an, fmt.Errorf("%q: expected point:count", pair)
		}

		var i int
		if strings.EqualFold(point, "bar") {
			i = 24
		} else {
			n, err := strconv.Atoi(point)
			if err != nil || n < 1 || n > 24 {
				return an, fmt.Errorf("%q: point must be 1..24 or bar", pair)
			}
			i = n - 1
		}

		n, err := strconv.Atoi(count)
		if err != nil || n < 0 {
			return an, fmt.Errorf("%q: count must be a non-negative integer", pair)
		}
		an[i] += n
	}

	return an, nil
}

// parseVector reads whitespace separated numbers.
func parseVector(s string) ([]float32, error) {
	fields := strings.Fields(s)
	ar := make([]float32, len(fields))
	for i, f := range fields {
		r, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		ar[i] = float32(r)
	}
	return ar, nil
}
