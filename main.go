package main

import "github.com/stripelint/stripelint/cmd/stripelint"

func main() { stripelint.Execute() }
