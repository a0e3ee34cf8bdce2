// Package main provides the entry point for the rudl-extract CLI.
//
// rudl-extract reads the fields of a Russian driver license from photos of
// its front and back.
//
// Usage:
//
//	rudl-extract extract --front front.jpg --back back.jpg
//	rudl-extract serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
