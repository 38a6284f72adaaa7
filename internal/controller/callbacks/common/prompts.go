package common

// Подсказки диалогов, общие для команд и кнопок
const (
	PromptNewSlotTitle = "📝 Создание нового слота\n\n" +
		"Шаг 1 из 3: Как называется слот?\n\n" +
		"Например: Дежурство, Смена в офисе, Созвон с клиентом\n\n" +
		"Для отмены используйте /cancel"

	PromptNewSlotStart = "Шаг 2 из 3: Когда начинается слот?\n\n" +
		"Формат: ДД.ММ.ГГГГ ЧЧ:ММ, например 15.01.2030 10:00\n\n" +
		"Для отмены используйте /cancel"

	PromptNewSlotEnd = "Шаг 3 из 3: Когда слот заканчивается?\n\n" +
		"Укажите время ЧЧ:ММ (в тот же день) или полную дату ДД.ММ.ГГГГ ЧЧ:ММ\n\n" +
		"Для отмены используйте /cancel"

	PromptEditTitle = "✏️ Введите новое название слота\n\n" +
		"Для отмены используйте /cancel"

	PromptEditTime = "🕐 Введите новое время слота\n\n" +
		"Формат: ДД.ММ.ГГГГ ЧЧ:ММ-ЧЧ:ММ, например 15.01.2030 10:00-11:30\n\n" +
		"Для отмены используйте /cancel"
)
