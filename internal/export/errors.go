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

package export

import "errors"

var (
	// ErrExportFailed wraps every pipeline failure. Users only ever see one
	// generic message for it.
	ErrExportFailed = errors.New("export failed")

	// ErrInProgress is returned when an export is requested while another is running.
	ErrInProgress = errors.New("export already in progress")

	// ErrUnknownFormat is returned by ParseFormat.
	ErrUnknownFormat = errors.New("unknown export format")

	// ErrEmptyBlob is returned when encoding produced no bytes.
	ErrEmptyBlob = errors.New("encoded image is empty")

	// ErrRenderTimeout is returned when the render target never became ready.
	ErrRenderTimeout = errors.New("render target did not become ready")

	// ErrBlobNotFound is returned for unknown or released download ids.
	ErrBlobNotFound = errors.New("download not found")
)
