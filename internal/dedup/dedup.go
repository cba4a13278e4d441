package dedup

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash возвращает ключ дедупликации статьи: sha256 от заголовка и ссылки без разделителя.
// От источника ключ не зависит, поэтому одна и та же запись из двух лент сохранится один раз
func Hash(title, link string) string {
	sum := sha256.Sum256([]byte(title + link))
	return hex.EncodeToString(sum[:])
}
