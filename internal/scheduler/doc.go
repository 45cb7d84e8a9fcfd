// Package scheduler — фасад SyncedScheduler.
//
// Scheduler регистрирует job (имя + расписание + действие) в локальном
// таймере, обернув действие в адаптер расписания и Dedup Guard. Каждый
// инстанс приложения создаёт свой Scheduler с общими Store и Locker;
// таймеры срабатывают на всех инстансах, а действие выполняется
// одним из них.
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Store:  repo.NewWatermarkRepo(pool),
//	    Locker: repo.NewAdvisoryLocker(pool),
//	    Logger: logger,
//	})
//	sched.Start()
//	defer sched.Stop(ctx)
//
//	handle, err := sched.ScheduleJob("digest", "0 * * * *", sendDigest)
//
// Расписание — cron-строка, recurrence.Rule или time.Time. Форма
// определяется один раз при регистрации.
//
// Отмена (Handle.Cancel, Scheduler.Cancel) останавливает только
// локальные срабатывания: watermark и другие инстансы не затрагиваются.
//
// Структура:
//   - scheduler.go — Scheduler, ScheduleJob, Start/Stop
//   - cron.go      — вычисление ближайших срабатываний для CLI
package scheduler
