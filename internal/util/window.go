package util

import "github.com/asecurityteam/rolling"

// CreateRollingWindow creates a point based rolling window of the given size.
func CreateRollingWindow(size int) *rolling.PointPolicy {
	return rolling.NewPointPolicy(rolling.NewWindow(size))
}
