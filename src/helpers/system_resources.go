package helpers

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// fallbackMemoryMB is used when total memory cannot be read.
const fallbackMemoryMB = 512

// GetTotalSystemMemoryMB returns the total physical memory in MB, or 0 when
// /proc/meminfo is not available.
func GetTotalSystemMemoryMB() int {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer file.Close()

	return parseMemTotal(bufio.NewScanner(file))
}

func parseMemTotal(scanner *bufio.Scanner) int {
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[0] == "MemTotal:" {
			kb, err := strconv.Atoi(fields[1])
			if err == nil {
				return kb / 1024
			}
		}
	}
	return 0
}

// -----------------------------------------------------------------------------

// RecommendedMemoryLimit returns configuredMB when set, otherwise 75% of
// total RAM, never below 512MB unless the machine has less.
func RecommendedMemoryLimit(configuredMB int) int {
	if configuredMB > 0 {
		return configuredMB
	}
	return limitFor(GetTotalSystemMemoryMB())
}

func limitFor(totalMB int) int {
	if totalMB == 0 {
		return fallbackMemoryMB
	}
	limit := int(float64(totalMB) * 0.75)
	if limit < fallbackMemoryMB {
		if totalMB < fallbackMemoryMB {
			return totalMB
		}
		return fallbackMemoryMB
	}
	return limit
}
