package output

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("输出目录为空")
	}
	return os.MkdirAll(dir, 0o755)
}

func NextReport(dir, marketplace string, randomLen int, randSrc io.Reader) (id string, path string, err error) {
	if randomLen <= 0 {
		randomLen = 8
	}
	if randSrc == nil {
		randSrc = rand.Reader
	}
	if marketplace == "" {
		marketplace = "us"
	}
	for i := 0; i < 1000; i++ {
		id, err = randomID(randomLen, randSrc)
		if err != nil {
			return "", "", err
		}
		path = filepath.Join(dir, fmt.Sprintf("listing_%s_%s.md", id, marketplace))
		if !exists(path) {
			return id, path, nil
		}
	}
	return "", "", fmt.Errorf("尝试多次仍无法生成不冲突文件名")
}

func randomID(n int, randSrc io.Reader) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(randSrc, buf); err != nil {
		return "", fmt.Errorf("生成随机文件名失败：%w", err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
