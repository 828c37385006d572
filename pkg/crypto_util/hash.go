package crypto_util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// 支持的摘要算法名称 (配置项 alert.hash)
const (
	HashSHA256    = "sha256"
	HashKeccak256 = "keccak256"
	HashBlake3    = "blake3"
)

// Hasher 对多段输入计算十六进制摘要
type Hasher func(parts ...[]byte) string

// CalculateSHA256 计算输入的 SHA256 哈希值。
func CalculateSHA256(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CalculateKeccak256 计算输入的 Keccak256 哈希值。
// 这是以太坊使用的哈希算法。
func CalculateKeccak256(parts ...[]byte) string {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CalculateBlake3 计算输入的 Blake3 哈希值。
func CalculateBlake3(parts ...[]byte) string {
	h := blake3.New(32, nil)
	for _, p := range parts {
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NewHasher 根据名称返回摘要函数，空字符串默认 sha256
func NewHasher(name string) (Hasher, error) {
	switch name {
	case "", HashSHA256:
		return CalculateSHA256, nil
	case HashKeccak256:
		return CalculateKeccak256, nil
	case HashBlake3:
		return CalculateBlake3, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", name)
	}
}
