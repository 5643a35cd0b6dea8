package extract

import "strings"

// packageFromNodeModulesPath isolates the package name from a path
// containing a node_modules/ segment: the next one segment, or two for a
// scoped package beginning with '@' (spec.md §4.3, E2/E3).
func packageFromNodeModulesPath(path string) (string, bool) {
	const marker = "node_modules/"
	idx := strings.LastIndex(path, marker)
	if idx == -1 {
		return "", false
	}
	rest := path[idx+len(marker):]
	return firstPackageSegments(rest)
}

// packageFromAbsoluteScopedPath handles a path that begins with
// "@scope/pkg/..." without a node_modules/ segment (spec.md §4.3, E3).
func packageFromAbsoluteScopedPath(path string) (string, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	if !strings.HasPrefix(trimmed, "@") {
		return "", false
	}
	return firstPackageSegments(trimmed)
}

// firstPackageSegments takes the first one (or two, for a scoped name)
// path segments of rest and returns them joined as a package name.
func firstPackageSegments(rest string) (string, bool) {
	rest = strings.TrimPrefix(rest, "/")
	segments := strings.Split(rest, "/")
	if len(segments) == 0 || segments[0] == "" {
		return "", false
	}
	if strings.HasPrefix(segments[0], "@") {
		if len(segments) < 2 || segments[1] == "" {
			return "", false
		}
		return segments[0] + "/" + segments[1], true
	}
	return segments[0], true
}
