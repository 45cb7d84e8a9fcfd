// Package rediskv реализует watermark.Store и lock.Locker поверх Redis.
//
// Ключи:
//   - <prefix>wm:<job>    — watermark (строка с int64 миллисекунд)
//   - <prefix>lock:<name> — лок, значение — токен владельца
//
// Лок берётся через SET NX PX с TTL и отпускается Lua-скриптом
// compare-and-delete, так что инстанс не может снять чужой лок.
// Клиент Redis принадлежит вызывающему: пакет его не закрывает.
//
// Использование:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := rediskv.NewWatermarkStore(client, rediskv.WithPrefix("syncron:"))
//	locker := rediskv.NewLocker(client, rediskv.WithLockTTL(30*time.Second))
package rediskv
