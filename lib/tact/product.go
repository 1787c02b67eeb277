// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package tact

import (
	"fmt"
	"strings"
)

// Product is a patch service product code.
type Product string

const (
	ProductRetail     Product = "wow"
	ProductClassic    Product = "wow_classic"
	ProductClassicEra Product = "wow_classic_era"
)

// Products lists the known product codes.
var Products = []Product{ProductRetail, ProductClassic, ProductClassicEra}

// ParseProduct validates a product code.
func ParseProduct(code string) (Product, error) {
	for _, product := range Products {
		if string(product) == code {
			return product, nil
		}
	}
	names := make([]string, len(Products))
	for i, product := range Products {
		names[i] = string(product)
	}
	return "", fmt.Errorf("unknown product %q (known: %s)", code, strings.Join(names, ", "))
}
