package version

import (
	"fmt"
	"regexp"
	"strconv"
)

// SDK releases use three or four numeric components (1.3.296 or 1.3.296.0)
var sdkVersionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:\.(\d+))?$`)

// Version represents an SDK release number
type Version struct {
	Major    int
	Minor    int
	Patch    int
	Revision int
	// HasRevision records whether the fourth component was present so
	// String() can round-trip the original form.
	HasRevision bool
}

// IsVersionString reports whether s looks like an SDK version directory name
func IsVersionString(s string) bool {
	return sdkVersionPattern.MatchString(s)
}

// ParseVersion parses a version string into a Version struct
func ParseVersion(v string) (*Version, error) {
	matches := sdkVersionPattern.FindStringSubmatch(v)
	if matches == nil {
		return nil, fmt.Errorf("invalid version format: %s", v)
	}

	major, _ := strconv.Atoi(matches[1])
	minor, _ := strconv.Atoi(matches[2])
	patch, _ := strconv.Atoi(matches[3])

	result := &Version{
		Major: major,
		Minor: minor,
		Patch: patch,
	}
	if matches[4] != "" {
		result.Revision, _ = strconv.Atoi(matches[4])
		result.HasRevision = true
	}
	return result, nil
}

// String returns the string representation of a version
func (v *Version) String() string {
	if v.HasRevision {
		return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Revision)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare compares two versions. Returns -1 if v < other, 0 if equal, 1 if v > other.
// A missing revision compares as zero.
func (v *Version) Compare(other *Version) int {
	pairs := [][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
		{v.Revision, other.Revision},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// CompareStrings compares two version strings. Unparseable strings sort
// before any valid version and compare equal to each other.
func CompareStrings(a, b string) int {
	va, errA := ParseVersion(a)
	vb, errB := ParseVersion(b)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}
