package session

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDuration converts a strict HH:MM:SS exam duration into total seconds.
func ParseDuration(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, &ValidationError{Reason: fmt.Sprintf("duration %q is not HH:MM:SS", s)}
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, &ValidationError{Reason: fmt.Sprintf("duration %q is not HH:MM:SS", s)}
		}
		nums[i] = n
	}
	if nums[1] > 59 || nums[2] > 59 {
		return 0, &ValidationError{Reason: fmt.Sprintf("duration %q has minutes or seconds above 59", s)}
	}

	return nums[0]*3600 + nums[1]*60 + nums[2], nil
}

// FormatDuration renders total seconds as HH:MM:SS.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
