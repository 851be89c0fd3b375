//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

//go:build !purego

package bitmat

// Transposer is the block transposer used by Square128.Transpose.
var Transposer = RecursiveTransposer
