// Package watermark описывает хранилище watermark'ов — общего для всех
// инстансов состояния "последнего зафиксированного выполнения" job.
//
// Watermark — это int64 (миллисекунды с epoch), хранимый под ключом,
// равным имени job. Значение меняется только под распределённым локом
// (см. пакет lock), поэтому Store не обязан быть транзакционным.
//
// Реализации:
//   - MemoryStore         — в памяти процесса (тесты, single-instance)
//   - repo.WatermarkRepo  — PostgreSQL
//   - rediskv.WatermarkStore — Redis
//   - sqlite.WatermarkStore  — SQLite (несколько процессов на одном хосте)
package watermark
