// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates data against embedded CUE schemas.
//
// JSON is valid CUE, so the same flow serves both manifest extra blocks and
// CUE configuration files:
//
//  1. Compile the embedded schema
//  2. Compile the data and unify it with a schema definition
//  3. Validate, then optionally decode into a Go value
//
// # Usage
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseAndDecode[Settings](
//	    schema,
//	    rawJSON,
//	    "#Settings",
//	    cueutil.WithFilename("composer.json#extra.modera-monorepo"),
//	)
//	if err != nil {
//	    return nil, err // error carries the JSON path of the offending field
//	}
//	return result.Value, nil
package cueutil
