//go:build !linux

package drivetable

// ProbeFAT always reports false off Linux; without the vfat ioctl surface
// there is nothing FAT-specific the server could do with a positive answer
// anyway, so attributes are synthesized.
func ProbeFAT(root string) (bool, error) {
	return false, nil
}
