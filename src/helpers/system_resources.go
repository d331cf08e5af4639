package helpers

import "fmt"

// GetRecommendedMemoryLimit calculates a safe memory limit for the application.
// Default policy: 75% of Total RAM.
// Fallback: 512MB.
func GetRecommendedMemoryLimit() int {
	// Call OS-specific implementation
	totalMB := GetTotalSystemMemoryMB()
	if totalMB == 0 {
		fmt.Println("Warning: Could not determine system memory. Defaulting to 512MB.")
		return 512
	}

	// Use 75% of available RAM
	limit := int(float64(totalMB) * 0.75)

	// Ensure at least 512MB if system has > 512MB, otherwise use total
	if limit < 512 {
		if totalMB < 512 {
			return totalMB // Very low memory system
		}
		return 512
	}

	return limit
}

// RecommendedTradeLogCapacity sizes the per-symbol in-memory trade log from
// the memory budget, assuming roughly 128 bytes per retained trade and at
// most 5% of the budget spent on trade logs.
func RecommendedTradeLogCapacity(symbols int) int {
	if symbols < 1 {
		symbols = 1
	}

	limitMB := GetRecommendedMemoryLimit()
	capacity := limitMB * 1024 * 1024 / 20 / 128 / symbols

	if capacity < 10000 {
		return 10000
	}
	if capacity > 1000000 {
		return 1000000
	}
	return capacity
}
