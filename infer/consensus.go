// queenGT: a tool for reconstructing honeybee queen genotypes from drone sequencing data.
// Copyright (c) 2023-2026 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/queengt/blob/master/LICENSE.txt>.

// Package infer reconstructs the diploid genotypes of honeybee queens from
// the genotypes of their haploid drone offspring. Drones develop from
// unfertilized eggs, so each drone genotype is one direct observation of
// one of the two alleles its queen carries at a site.
package infer

import (
	"strings"
)

// Genotype calls emitted for queens. Queens are diploid, so inference
// always produces a diploid call, also when the drone input is haploid.
const (
	HomRef  = "0/0"
	Het     = "0/1"
	HomAlt  = "1/1"
	Missing = "./."

	// MissingHaploid is how a missing genotype is spelled in haploid input.
	MissingHaploid = "."
)

// alleleCall returns the leading GT subfield of a raw genotype column,
// discarding any further :-separated subfields such as read depth or
// genotype quality.
func alleleCall(raw string) string {
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		return raw[:i]
	}
	return raw
}

// QueenGenotype infers the genotype of a queen at one site from the raw
// genotype columns of her drones.
//
// Missing observations are discarded first; when fewer than minDrones
// remain, the queen's genotype is unknown and the missing call is
// returned. Otherwise the fraction of alternate-bearing drones decides:
// below hetThreshold the queen is called homozygous reference, above
// 1-hetThreshold homozygous alternate, and anywhere in the closed interval
// between them heterozygous.
//
// A drone bears an alternate allele when its GT subfield differs from the
// literal reference spelling, "0" for haploid input and "0/0" for diploid
// input. Spellings such as "0|0" or "0/2" therefore count as alternate.
func QueenGenotype(droneGTs []string, hetThreshold float64, minDrones int, haploid bool) string {
	missing := Missing
	if haploid {
		missing = MissingHaploid
	}
	total, altCount := 0, 0
	for _, raw := range droneGTs {
		gt := alleleCall(raw)
		if gt == missing || gt == "" {
			continue
		}
		total++
		if haploid {
			if gt != "0" {
				altCount++
			}
		} else if gt != HomRef {
			altCount++
		}
	}
	if total < minDrones {
		return Missing
	}
	ratio := float64(altCount) / float64(total)
	switch {
	case ratio < hetThreshold:
		return HomRef
	case ratio > 1-hetThreshold:
		return HomAlt
	default:
		return Het
	}
}
