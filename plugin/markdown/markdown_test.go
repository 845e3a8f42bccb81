package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRenderBasic 測試基本 markdown 轉 HTML
func TestRenderBasic(t *testing.T) {
	svc := NewService()

	out, err := svc.Render("# 牙體復形\n\n窩洞分類筆記")
	require.NoError(t, err)
	require.Contains(t, out, "<h1>牙體復形</h1>")
	require.Contains(t, out, "<p>窩洞分類筆記</p>")
}

// TestRenderGFMTable 測試 GFM 表格擴充
func TestRenderGFMTable(t *testing.T) {
	svc := NewService()

	out, err := svc.Render("| 分類 | 說明 |\n| --- | --- |\n| Class I | 咬合面窩洞 |")
	require.NoError(t, err)
	require.Contains(t, out, "<table>")
	require.Contains(t, out, "Class I")
}

// TestRenderEscapesRawHTML 測試原始 HTML 會被跳脫
func TestRenderEscapesRawHTML(t *testing.T) {
	svc := NewService()

	out, err := svc.Render("note <script>alert(1)</script>")
	require.NoError(t, err)
	require.NotContains(t, out, "<script>")
}

// TestRenderHardWraps 測試單一換行轉 <br>
func TestRenderHardWraps(t *testing.T) {
	svc := NewService(WithHardWraps())

	out, err := svc.Render("第一行\n第二行")
	require.NoError(t, err)
	require.Contains(t, out, "<br")
}
