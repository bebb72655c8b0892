package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Component lifecycle
		"Acquired component %s":                       "コンポーネント %s を取得しました",
		"Released component %s":                       "コンポーネント %s を解放しました",
		"Discovered ports: input %d, output %d":       "ポートを検出: 入力 %d, 出力 %d",
		"Switching state %s -> %s":                    "状態を切り替え中 %s -> %s",
		"Command complete: %s %s":                     "コマンド完了: %s %s",
		"Command complete: %s port %d":                "コマンド完了: %s ポート %d",
		"Port %d enabled=%v":                          "ポート %d 有効=%v",
		"Allocated %d bytes on port %d":               "ポート %[2]d に %[1]d バイトを確保しました",
		"Freed buffer on port %d":                     "ポート %d のバッファを解放しました",
		"Unhandled event %s: 0x%x 0x%x":               "未処理のイベント %s: 0x%x 0x%x",
		"Component error event: %s (0x%x)":            "コンポーネントのエラーイベント: %s (0x%x)",
		"Dropping pending component error: %v":        "保留中のコンポーネントエラーを破棄: %v",
		"Dropping further component error: %v":        "後続のコンポーネントエラーを破棄: %v",
		"Input port %d: %dx%d slice %d %s, buffer %d bytes": "入力ポート %d: %dx%d スライス %d %s, バッファ %d バイト",
		"Output port %d: JPEG quality %d, buffer %d bytes":  "出力ポート %d: JPEG 品質 %d, バッファ %d バイト",

		// Encoder
		"Encoder %s ready: %dx%d %s slice %d quality %d, input buffer %s, output buffer %s": "エンコーダ %s 準備完了: %dx%d %s スライス %d 品質 %d, 入力バッファ %s, 出力バッファ %s",
		"Encoder %s: %s -> %s in %s": "エンコーダ %s: %s -> %s (%s)",
		"Encoder %s closed":          "エンコーダ %s を閉じました",

		// Batch
		"Encoding %d frames with %d workers": "%d フレームを %d ワーカーでエンコード中",

		// CLI (info)
		"Loaded config from %s":                 "設定を %s から読み込みました",
		"Using %s backend":                      "%s バックエンドを使用します",
		"Encoding %d frames (%dx%d %s, quality %d)": "%d フレームをエンコード中 (%dx%d %s, 品質 %d)",
		"Wrote %s (%s)":                         "%s を書き出しました (%s)",
		"Encoded %d frames in %s (%s/frame)":    "%d フレームを %s でエンコードしました (%s/フレーム)",
		"Interrupted, shutting down...":         "中断されました。シャットダウン中...",

		// Warnings
		"Component reported corrupt stream, continuing": "コンポーネントがストリーム破損を報告しました。処理を続行します",
		"Discarding stale component error: %v":          "古いコンポーネントエラーを破棄: %v",
		"Dropping component error during flush of port %d: %v": "ポート %d のフラッシュ中のコンポーネントエラーを破棄: %v",
		"Output %s already taken, writing %s as %s":     "出力 %s は使用済みのため、%s を %s として書き出します",
		"Encoder %s dropped a frame: %v":                "エンコーダ %s がフレームを破棄しました: %v",
		"Rollback of %s incomplete: %v":                 "%s のロールバックが不完全です: %v",
		"Frame %s failed: %v":                           "フレーム %s が失敗しました: %v",
		"Worker %d reopening encoder":                   "ワーカー %d がエンコーダを開き直します",
		"Worker %d failed to close encoder: %v":         "ワーカー %d がエンコーダを閉じられませんでした: %v",
		"Hardware encoder not available, using software component": "ハードウェアエンコーダが利用できないため、ソフトウェアコンポーネントを使用します",
		"%d of %d frames failed":                        "%d / %d フレームが失敗しました",

		// Errors
		"Encoder %s could not recover: %v": "エンコーダ %s は回復できませんでした: %v",
		"Failed to write output: %s":       "出力の書き込みに失敗しました: %s",
	})
}
