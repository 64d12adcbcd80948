// SPDX-License-Identifier: MPL-2.0

// precipice benchmarks a binary by running it repeatedly and summarizing
// the wall-clock duration distribution.
package main

func main() {
	Execute()
}
