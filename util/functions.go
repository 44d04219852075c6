package util

import (
	"log"
	"math"
	"runtime"
	"sort"
	"unicode"
)

func RangeInt(to int) []int {
	retval := make([]int, to)
	for i := 0; i < to; i++ {
		retval[i] = i
	}
	return retval
}

func Max(a, b int) int {
	if a < b {
		return b
	}
	return a
}

func Min(a, b int) int {
	if a > b {
		return b
	}
	return a
}

// Finite is false for NaN and +/-Inf
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsPunct reports whether every rune of s is punctuation or a symbol
func IsPunct(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

func LogMemory() {
	s := &runtime.MemStats{}
	runtime.ReadMemStats(s)
	log.Println("*** Memory Info ***")
	log.Println("Bytes Allocated InUse:\t", s.Alloc)
	log.Println("Mallocs:\t\t", s.Mallocs)
	log.Println("Frees:\t\t\t", s.Frees)
	log.Println("Heap Allocated InUse:\t", s.HeapAlloc)
	log.Println("Heap Objects:\t\t", s.HeapObjects)
	log.Println("*** ***")
}

type TopNStrIntDatum struct {
	S string
	N int
}

type TopNStrIntData []TopNStrIntDatum

func (arr TopNStrIntData) Len() int {
	return len(arr)
}

func (arr TopNStrIntData) Swap(a, b int) {
	arr[a], arr[b] = arr[b], arr[a]
}

// ties are ordered by key so output is stable across map iteration orders
func (arr TopNStrIntData) Less(a, b int) bool {
	if arr[a].N == arr[b].N {
		return arr[a].S < arr[b].S
	}
	return arr[a].N > arr[b].N
}

func GetTopNStrInt(m map[string]int, n int) []TopNStrIntDatum {
	data := make(TopNStrIntData, len(m))
	var i int
	for k, v := range m {
		data[i] = TopNStrIntDatum{k, v}
		i++
	}
	sort.Sort(data)
	return data[:Min(len(data), n)]
}
