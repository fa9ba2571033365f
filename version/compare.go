package version

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Compare orders two semver strings. It returns 1 when a is newer than b,
// -1 when older, and 0 when they are the same release.
func Compare(a, b string) (int, error) {
	parse := func(s string) (parts [3]int, err error) {
		_, err = fmt.Sscanf(strings.TrimPrefix(s, "v"), "%d.%d.%d", &parts[0], &parts[1], &parts[2])
		return parts, err
	}

	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for _, pair := range []lo.Tuple2[int, int]{
		{A: av[0], B: bv[0]},
		{A: av[1], B: bv[1]},
		{A: av[2], B: bv[2]},
	} {
		if pair.A != pair.B {
			return lo.Ternary(pair.A > pair.B, 1, -1), nil
		}
	}

	return 0, nil
}
