package system

import (
	"fmt"
	"math"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ivlev/note-overlay/internal/logger"
)

// bytesPerPixel оценивает память на пиксель одной пары в работе:
// оригинал, аннотированное, результат (по 4 байта) плюс маска и её копия.
const bytesPerPixel = 4*3 + 2

// SuggestWorkers ограничивает число параллельных пар доступной памятью.
// pixels: площадь самой большой ожидаемой страницы. Половина свободной
// памяти оставляется под архив и остальную систему.
func SuggestWorkers(requested int, pixels int64) int {
	if requested <= 0 {
		requested = runtime.NumCPU()
	}
	if pixels <= 0 {
		return requested
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		logger.WithError(err).Warn("cannot read memory stats, keeping requested worker count")
		return requested
	}

	perPair := uint64(pixels) * bytesPerPixel
	budget := vm.Available / 2
	fit := int(math.Max(1, float64(budget/perPair)))
	if fit < requested {
		logger.Logger.Debugf("workers capped by memory: %d -> %d (available %s)",
			requested, fit, FormatFileSize(int64(vm.Available)))
		return fit
	}
	return requested
}

// FormatFileSize форматирует размер в байтах в человекочитаемый вид.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	const k = 1024.0
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(k)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	v := float64(bytes) / math.Pow(k, float64(i))
	if i == 0 {
		return fmt.Sprintf("%d %s", bytes, sizes[0])
	}
	return fmt.Sprintf("%s %s", trimFloat(v), sizes[i])
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
