//go:build !debug

package loader

func debugLog(string, ...any) {}

func debugResult(LoadResult) {}
