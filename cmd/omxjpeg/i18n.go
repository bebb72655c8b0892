// Package main provides localization for the omxjpeg CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Encoder": "エンコーダ設定",
		"Output":  "出力先",
		"Logging": "ログ",

		// Root command
		"Encode raw frames to JPEG on the OpenMAX IL image encoder": "OpenMAX IL 画像エンコーダで生フレームを JPEG に変換",
		"YAML configuration file":                                   "YAML 設定ファイル",
		"Log level (debug, info, warn, error)":                      "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                   "すべてのログ出力を抑制",

		// Encoder flags
		"Component backend (auto, omx, soft)":         "コンポーネントのバックエンド（auto, omx, soft）",
		"OpenMAX IL component name":                   "OpenMAX IL コンポーネント名",
		"Frame width in pixels":                       "フレームの幅（ピクセル）",
		"Frame height in pixels":                      "フレームの高さ（ピクセル）",
		"Input slice height (16 or the frame height)": "入力スライスの高さ（16 またはフレームの高さ）",
		"JPEG quality (1-100)":                        "JPEG 品質（1-100）",
		"Input color format, e.g. 24bitRGB888":        "入力カラーフォーマット（例: 24bitRGB888）",
		"Number of encoders run in parallel":          "並列に動かすエンコーダ数",
		"Timeout for component commands":              "コンポーネントコマンドのタイムアウト",
		"Timeout for each buffer exchange":            "バッファ受け渡しごとのタイムアウト",

		// Encode command
		"Encode images or raw frames to JPEG files":                     "画像または生フレームを JPEG ファイルに変換",
		"Directory for the JPEG files":                                  "JPEG ファイルの出力ディレクトリ",
		"Treat inputs as packed frames in the configured color format": "入力を設定済みカラーフォーマットの生フレームとして扱う",
		"Write a Markdown summary of the run to this path":              "実行結果の Markdown サマリーをこのパスに書き出す",
		"no input files":                                                "入力ファイルがありません",

		// Testpattern command
		"Encode a generated test pattern":      "生成したテストパターンをエンコード",
		"Pattern to generate (%s)":             "生成するパターン（%s）",
		"Number of times the frame is encoded": "フレームをエンコードする回数",
		"Output JPEG file path":                "出力 JPEG ファイルパス",

		// Formats command
		"Probe which input color formats the component accepts":      "コンポーネントが受け付ける入力カラーフォーマットを調べる",
		"Probe every known color format, not only the packable ones": "変換可能なものに限らず既知のすべてのカラーフォーマットを調べる",
		"Format":         "フォーマット",
		"Value":          "値",
		"Frame":          "フレーム",
		"Input buffer":   "入力バッファ",
		"Output buffer":  "出力バッファ",
		"Result":         "結果",
		"supported":      "対応",
		"not advertised": "非対応",
		"rejected":       "拒否",

		// Version command
		"Show version information": "バージョン情報を表示",
		"omxjpeg version %s":       "omxjpeg バージョン %s",
	})
}
