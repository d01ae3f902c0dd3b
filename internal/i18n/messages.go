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

// Package i18n holds the user-facing messages of the studio and picks a
// language from the Accept-Language header.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys.
const (
	KeyExportFailed = "export.failed"
	KeyCopyFailed   = "copy.failed"
	KeyEmptyText    = "text.empty"
	KeyCopied       = "copy.done"
	KeyGenerating   = "export.generating"
)

// Supported lists the catalog languages; the first entry is the fallback.
var Supported = []language.Tag{
	language.English,
	language.Spanish,
	language.German,
}

var matcher = language.NewMatcher(Supported)

var catalog = map[language.Tag]map[string]string{
	language.English: {
		KeyExportFailed: "Could not generate the QR code. Please try again.",
		KeyCopyFailed:   "Could not copy to the clipboard.",
		KeyEmptyText:    "Enter some text to generate a QR code.",
		KeyCopied:       "Copied!",
		KeyGenerating:   "Generating...",
	},
	language.Spanish: {
		KeyExportFailed: "No se pudo generar el código QR. Inténtelo de nuevo.",
		KeyCopyFailed:   "No se pudo copiar al portapapeles.",
		KeyEmptyText:    "Introduzca un texto para generar un código QR.",
		KeyCopied:       "¡Copiado!",
		KeyGenerating:   "Generando...",
	},
	language.German: {
		KeyExportFailed: "Der QR-Code konnte nicht erstellt werden. Bitte erneut versuchen.",
		KeyCopyFailed:   "Kopieren in die Zwischenablage fehlgeschlagen.",
		KeyEmptyText:    "Geben Sie einen Text ein, um einen QR-Code zu erstellen.",
		KeyCopied:       "Kopiert!",
		KeyGenerating:   "Wird erstellt...",
	},
}

func init() {
	for tag, messages := range catalog {
		for key, msg := range messages {
			if err := message.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

// Match picks the best supported language for an Accept-Language header.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Supported[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// Message renders key in tag. Unknown keys come back verbatim.
func Message(tag language.Tag, key string) string {
	return message.NewPrinter(tag).Sprintf(key)
}
