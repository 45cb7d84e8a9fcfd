// Package guard реализует Dedup Guard — обёртку, которая гарантирует,
// что действие job выполнится не более одного раза на срабатывание
// во всём флоте инстансов.
//
// Протокол одного срабатывания:
//
//  1. Захват распределённого лока "<job>Lock" (блокируется до получения).
//  2. Чтение watermark'а job под локом.
//  3. ShouldRun: нет watermark'а — да; recurring — watermark < now;
//     one-off — watermark != NextExecution.
//  4. Если да — запись watermark = NextExecution, затем отпускание лока.
//     Запись строго до отпускания: иначе второй инстанс успеет занять
//     тот же timestamp.
//  5. После отпускания лока — вызов действия. Ошибка или паника действия
//     логируется и отбрасывается: watermark уже записан, повтора нет.
//
// Лок отпускается на любом пути выхода, включая ошибки хранилища.
package guard
