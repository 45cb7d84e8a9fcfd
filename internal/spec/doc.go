// Package spec описывает расписание job как закрытый вариант
// {Cron, Recurrence, OneOff}.
//
// Форма расписания определяется один раз при регистрации (Parse),
// дальше каждое срабатывание таймера вызывает Spec.Next, который
// вычисляет Firing: timestamp следующего выполнения и флаг recurring.
// Next не кэширует результат — он зависит от текущего времени.
//
//	s, err := spec.Parse("0 * * * *", time.Now())
//	firing, err := s.Next(time.Now())
//	// firing.NextExecution — миллисекунды, firing.Recurring — true
package spec
