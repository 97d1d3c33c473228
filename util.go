package partkv

import "sort"

func sortInts(xs []int) { sort.Ints(xs) }
