package monobank

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/xiebiao/monobook/internal/domain/payment"
	"github.com/xiebiao/monobook/internal/infrastructure/config"
)

// KeySource 公钥来源(网关/api/merchant/pubkey)
type KeySource interface {
	FetchPublicKey(ctx context.Context) (string, error)
}

// Verifier X-Sign签名校验
// X-Sign = base64(ECDSA-SHA256(body)),签名为ASN.1 DER编码
//
// 公钥优先使用配置mono.public_key;未配置时首次校验从网关拉取并缓存,
// 校验失败时重新拉取一次(应对网关轮换公钥)。
// 回调接口是公开的,拉取频率限制为每keyRefreshInterval一次
type Verifier struct {
	source KeySource
	pinned bool

	refreshLimiter *rate.Limiter
	now            func() time.Time

	mu  sync.RWMutex
	key *ecdsa.PublicKey
}

// keyRefreshInterval 两次拉取公钥的最小间隔
const keyRefreshInterval = time.Minute

var _ payment.Verifier = (*Verifier)(nil)

// NewVerifier 创建校验器
func NewVerifier(cfg *config.Config, source KeySource) (*Verifier, error) {
	v := &Verifier{
		source:         source,
		refreshLimiter: rate.NewLimiter(rate.Every(keyRefreshInterval), 1),
		now:            time.Now,
	}
	if cfg.Mono.PublicKey == "" {
		return v, nil
	}

	key, err := ParsePublicKey(cfg.Mono.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("mono.public_key无效: %w", err)
	}
	v.key = key
	v.pinned = true
	return v, nil
}

// Verify 校验签名
func (v *Verifier) Verify(ctx context.Context, body []byte, signature string) error {
	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(sig) == 0 {
		return payment.ErrSignatureMismatch
	}
	digest := sha256.Sum256(body)

	key, err := v.currentKey(ctx)
	if err != nil {
		return err
	}
	if ecdsa.VerifyASN1(key, digest[:], sig) {
		return nil
	}

	if v.pinned {
		return payment.ErrSignatureMismatch
	}

	// 可能是公钥已轮换,重新拉取一次
	if !v.allowRefresh() {
		return payment.ErrSignatureMismatch
	}
	fresh, err := v.refresh(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("refresh monobank public key failed")
		return payment.ErrSignatureMismatch
	}
	if fresh.Equal(key) || !ecdsa.VerifyASN1(fresh, digest[:], sig) {
		return payment.ErrSignatureMismatch
	}
	return nil
}

func (v *Verifier) currentKey(ctx context.Context) (*ecdsa.PublicKey, error) {
	v.mu.RLock()
	key := v.key
	v.mu.RUnlock()
	if key != nil {
		return key, nil
	}
	if !v.allowRefresh() {
		return nil, payment.ErrGatewayUnavailable
	}
	return v.refresh(ctx)
}

func (v *Verifier) allowRefresh() bool {
	return v.refreshLimiter.AllowN(v.now(), 1)
}

func (v *Verifier) refresh(ctx context.Context) (*ecdsa.PublicKey, error) {
	if v.source == nil {
		return nil, errors.New("没有可用的公钥来源")
	}

	raw, err := v.source.FetchPublicKey(ctx)
	if err != nil {
		return nil, err
	}
	key, err := ParsePublicKey(raw)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.key = key
	v.mu.Unlock()
	log.Ctx(ctx).Info().Msg("monobank public key loaded")
	return key, nil
}

// ParsePublicKey 解析base64编码的PEM公钥
func ParsePublicKey(encoded string) (*ecdsa.PublicKey, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("公钥base64解码失败: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("公钥不是PEM格式")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("解析公钥失败: %w", err)
	}

	key, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("公钥类型%T不是ECDSA", pub)
	}
	return key, nil
}
