package cache

// The rendered-document cache is keyed by the markdown content hash alone:
// highlighted code blocks embed both the light and dark theme variants, so a
// single rendered result serves every theme.
var renderedDocCache = NewCache[string, []byte]()

func GetRenderedDoc(contentHash string) ([]byte, bool) {
	return renderedDocCache.Get(contentHash)
}

func SetRenderedDoc(contentHash string, html []byte) {
	renderedDocCache.Set(contentHash, html)
}

func ClearRenderedDocCache() {
	renderedDocCache.Clear()
}
