// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
