package syscalls

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var movEAX = regexp.MustCompile(`mov\s+\$0x([0-9a-fA-F]+),%eax`)

// ExtractSyscalls scans disassembly for syscall instructions. For each one
// the closest preceding "mov $0xNN,%eax" names the syscall number. The
// result is unique and ascending.
func ExtractSyscalls(disassembly string) []int {
	lines := strings.Split(disassembly, "\n")
	seen := make(map[int]bool)

	for i, line := range lines {
		if !strings.Contains(line, "syscall") {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			m := movEAX.FindStringSubmatch(lines[j])
			if m == nil {
				continue
			}
			if n, err := strconv.ParseInt(m[1], 16, 64); err == nil {
				seen[int(n)] = true
			}
			break
		}
	}

	numbers := make([]int, 0, len(seen))
	for n := range seen {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// SummaryLines returns the body of an strace -c report, i.e. everything
// but the two header and the two footer lines. Lines are kept as printed so
// the columns stay aligned.
func SummaryLines(report string) []string {
	lines := strings.Split(strings.TrimRight(report, "\n"), "\n")
	if len(lines) <= 4 {
		return nil
	}
	return lines[2 : len(lines)-2]
}
