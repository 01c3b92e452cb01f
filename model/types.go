// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package model contains the shared data model surfaced by the decoder: the
// coordinate and degree types, the header metadata, and the node/way/relation
// entities yielded by the element stream.
package model

import (
	"fmt"
	"math"
	"strconv"

	"github.com/golang/geo/s1"
)

const (
	coordinatesPerDegree = 1e-9
)

// Degrees is the decimal degree representation of a longitude or latitude.
type Degrees float64

// Angle represents a 1D angle in radians.
type Angle s1.Angle

// Epsilon is an enumeration of precisions used when comparing Degrees.
type Epsilon float64

// Degrees units.
const (
	Degree           Degrees = 1
	radiansPerPi             = 180
	Radian                   = (radiansPerPi / math.Pi) * Degree
	MinutesPerDegree         = 60
	SecondsPerDegree         = 3600

	E5 Epsilon = 1e-5
	E6 Epsilon = 1e-6
	E7 Epsilon = 1e-7
	E8 Epsilon = 1e-8
	E9 Epsilon = 1e-9

	TenMillionths      = 10_000_000
	Millionths         = 1_000_000
	HundredThousandths = 100_000

	Half = 0.5
)

// ID is the primary key of an entity.
type ID int64

// UID is the primary key for a user.
type UID int32

// Angle returns the equivalent s1.Angle.
func (d Degrees) Angle() Angle { return Angle(float64(d) * float64(s1.Degree)) }

// String renders d in degrees/minutes/seconds notation, with the seconds
// rounded to six decimal places.
func (d Degrees) String() string {
	sign := ""
	if d < 0 {
		sign = "-"
	}

	val := math.Abs(float64(d))
	degrees := int(math.Floor(val))
	minutes := int(math.Floor(MinutesPerDegree * (val - float64(degrees))))
	seconds := SecondsPerDegree * (val - float64(degrees) - (float64(minutes) / MinutesPerDegree))
	seconds = math.Round(seconds*1e6) / 1e6

	return fmt.Sprintf("%s%d° %d' %s\"", sign, degrees, minutes, ftoa(seconds))
}

// MarshalJSON renders d as a bare decimal number.
func (d Degrees) MarshalJSON() ([]byte, error) {
	return []byte(ftoa(float64(d))), nil
}

// EqualWithin checks if two degrees are within a specific epsilon of each other.
func (d Degrees) EqualWithin(o Degrees, eps Epsilon) bool {
	return round(float64(d)/float64(eps))-round(float64(o)/float64(eps)) == 0
}

// EqualWithin checks if two angles are within a specific epsilon of each other.
func (d Angle) EqualWithin(o Angle, eps Epsilon) bool {
	return round(float64(d)/float64(eps))-round(float64(o)/float64(eps)) == 0
}

// E5 returns the angle in hundred-thousandths of a degree.
func (d Degrees) E5() int32 { return round(float64(d * HundredThousandths)) }

// E6 returns the angle in millionths of a degree.
func (d Degrees) E6() int32 { return round(float64(d * Millionths)) }

// E7 returns the angle in ten-millionths of a degree.
func (d Degrees) E7() int32 { return round(float64(d * TenMillionths)) }

// ToDegrees converts a raw PBF coordinate into Degrees given the block's
// offset and granularity (spec §3: lat_deg = 1e-9 * (offset + granularity*raw)).
func ToDegrees(offset int64, granularity int32, coordinate int64) Degrees {
	return coordinatesPerDegree * Degrees(offset+(int64(granularity)*coordinate))
}

// round returns val rounded to nearest as an int32. This does not match C++
// exactly for the case of x.5.
func round(val float64) int32 {
	if val < 0 {
		return int32(val - Half)
	}

	return int32(val + Half)
}

// ParseDegrees converts a string to a Degrees instance.
func ParseDegrees(s string) (Degrees, error) {
	u, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	return Degrees(u), nil
}

// ftoa renders v using the shortest decimal representation that round-trips.
func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
