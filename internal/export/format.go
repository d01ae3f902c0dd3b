// Copyright (c) 2026 WSO2 LLC. (https://www.wso2.com).
//
// WSO2 LLC. licenses this file to you under the Apache License,
// Version 2.0 (the "License"); you may not use this file except
// in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package export turns studio settings into downloadable PNG, JPEG or SVG files.
package export

import (
	"fmt"
	"strings"
	"time"
)

// Format is a download format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatSVG  Format = "svg"
)

// Formats lists the supported formats in UI order.
var Formats = []Format{FormatPNG, FormatJPEG, FormatSVG}

// ParseFormat accepts the extension names plus the raster-lossless,
// raster-lossy and vector aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", "raster-lossless":
		return FormatPNG, nil
	case "jpeg", "jpg", "raster-lossy":
		return FormatJPEG, nil
	case "svg", "vector":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext is the file extension without the dot.
func (f Format) Ext() string { return string(f) }

// MIMEType is the media type of files in this format.
func (f Format) MIMEType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "image/png"
	}
}

// Raster reports whether the format is pixel based.
func (f Format) Raster() bool { return f != FormatSVG }

// Filename is the suggested download name, qr-<unix-epoch-ms>.<ext>.
func Filename(f Format, at time.Time) string {
	return fmt.Sprintf("qr-%d.%s", at.UnixMilli(), f.Ext())
}
