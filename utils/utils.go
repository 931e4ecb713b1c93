// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"fmt"
	"math"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/onsi/ginkgo/v2/formatter"

	"github.com/ava-labs/creditvm/consts"
)

func InitSubDirectory(rootPath string, name string) (string, error) {
	p := path.Join(rootPath, name)
	return p, os.MkdirAll(p, perms.ReadWriteExecute)
}

// Outputs to stdout.
//
// e.g.,
//
//	Out("{{green}}{{bold}}hi there %q{{/}}", "aa")
//	Out("{{magenta}}{{bold}}hi therea{{/}} {{cyan}}{{underline}}b{{/}}")
//
// ref.
// https://github.com/onsi/ginkgo/blob/v2.0.0/formatter/formatter.go#L52-L73
func Outf(format string, args ...interface{}) {
	s := formatter.F(format, args...)
	fmt.Fprint(formatter.ColorableStdOut, s)
}

// FormatAmount renders a token amount with [decimals] fractional digits.
func FormatAmount(amount uint64, decimals uint8) string {
	return strconv.FormatFloat(float64(amount)/math.Pow10(int(decimals)), 'f', int(decimals), 64)
}

// DayOf returns the reward day [t] falls in. Times before the epoch are day 0
// and days past the uint32 range saturate.
func DayOf(t time.Time) uint32 {
	secs := t.Unix()
	if secs < 0 {
		return 0
	}
	day := secs / consts.SecondsPerDay
	if day > int64(consts.MaxUint32) {
		return consts.MaxUint32
	}
	return uint32(day)
}

// StartOfDay returns the first instant of reward day [day].
func StartOfDay(day uint32) time.Time {
	return time.Unix(int64(day)*consts.SecondsPerDay, 0).UTC()
}
