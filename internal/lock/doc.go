// Package lock описывает распределённый лок, которым Dedup Guard
// сериализует проверку и запись watermark'а между инстансами.
//
// Locker — непрозрачная capability: Lock(name) блокируется, пока лок
// не получен (или не отменён ctx), и возвращает Lock, который нужно
// отпустить. WithLock оборачивает это в scoped-захват: лок отпускается
// на любом пути выхода, включая ошибки и панику внутри fn.
//
// Реализации:
//   - MemoryLocker           — внутри одного процесса
//   - repo.AdvisoryLocker    — pg_advisory_lock в PostgreSQL
//   - rediskv.Locker         — SET NX PX в Redis
package lock
