package common

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/slot_swap_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/slot_swap_bot/internal/model"
	"github.com/go-telegram/bot/models"
)

// Подписи кнопок длиннее обрезаются
const buttonTitleLength = 24

// BuildMySlotsScreen формирует список слотов пользователя
func BuildMySlotsScreen(slots []*model.Slot, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()

	if len(slots) == 0 {
		text := "📋 <b>Мои слоты</b>\n\n" +
			"У вас пока нет слотов.\n" +
			"Создайте первый: /newslot"
		kb.Row(keyboard.Button("➕ Новый слот", CbNewSlot))
		return text, kb.Build()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>Мои слоты</b> (%d %s)\n\n", len(slots), formatting.PluralizeSlots(len(slots)))
	for _, slot := range slots {
		display := formatting.GetSlotStatusDisplay(slot.Status)
		fmt.Fprintf(&sb, "%s %s\n", display.Emoji, slotLine(slot, loc))
		kb.Row(keyboard.Button(
			fmt.Sprintf("%s %s %s", display.Emoji, formatting.FormatShortSlotTime(slot.StartTime, slot.EndTime, loc), truncate(slot.Title)),
			Data(PrefixSlot, slot.ID),
		))
	}
	sb.WriteString("\n🔄 - готов к обмену, 🔴 - занят, ⏳ - ожидает обмена.\n")
	sb.WriteString("Нажмите на слот, чтобы управлять им.")

	kb.Row(
		keyboard.Button("➕ Новый слот", CbNewSlot),
		keyboard.Button("🛒 Маркет", CbMarket),
	)

	return sb.String(), kb.Build()
}

// BuildSlotScreen формирует карточку слота для владельца
func BuildSlotScreen(slot *model.Slot, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	display := formatting.GetSlotStatusDisplay(slot.Status)

	text := fmt.Sprintf(
		"%s <b>%s</b>\n\n"+
			"🕐 %s (%s)\n"+
			"📊 Статус: %s",
		display.Emoji,
		html.EscapeString(slot.Title),
		formatting.FormatSlotTime(slot.StartTime, slot.EndTime, loc),
		formatting.FormatDuration(slot.EndTime.Sub(slot.StartTime)),
		display.Text,
	)

	kb := keyboard.NewBuilder()
	switch slot.Status {
	case model.SlotStatusBusy:
		kb.Row(keyboard.Button("🔄 Открыть для обмена", StatusData(slot.ID, model.SlotStatusSwappable)))
	case model.SlotStatusSwappable:
		kb.Row(keyboard.Button("🔴 Снять с обмена", StatusData(slot.ID, model.SlotStatusBusy)))
	}

	if slot.Status.Locked() {
		text += "\n\n⏳ Слот участвует в обмене и не может быть изменён, пока запрос не разрешён."
		kb.Row(
			keyboard.Button("📥 Входящие", CbIncoming),
			keyboard.Button("📤 Исходящие", CbOutgoing),
		)
	} else {
		kb.Row(
			keyboard.Button("✏️ Название", Data(PrefixEditTitle, slot.ID)),
			keyboard.Button("🕐 Время", Data(PrefixEditTime, slot.ID)),
		)
		kb.Row(keyboard.Button("🗑 Удалить", Data(PrefixDelete, slot.ID)))
	}
	kb.AddBackButton(CbMySlots)

	return text, kb.Build()
}

// BuildDeleteConfirmScreen спрашивает подтверждение удаления
func BuildDeleteConfirmScreen(slot *model.Slot, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf(
		"🗑 Удалить слот %s?\n\nЭто действие нельзя отменить.",
		slotLine(slot, loc),
	)
	kb := keyboard.NewBuilder().
		AddConfirmCancel(Data(PrefixDeleteYes, slot.ID), Data(PrefixSlot, slot.ID))
	return text, kb.Build()
}

// BuildMarketScreen формирует маркет: чужие слоты, открытые для обмена
func BuildMarketScreen(slots []*model.Slot, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()

	if len(slots) == 0 {
		text := "🛒 <b>Маркет</b>\n\n" +
			"Сейчас нет слотов, открытых для обмена."
		kb.Row(keyboard.Button("📋 Мои слоты", CbMySlots))
		return text, kb.Build()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🛒 <b>Маркет</b> (%d %s)\n\n", len(slots), formatting.PluralizeSlots(len(slots)))
	for _, slot := range slots {
		fmt.Fprintf(&sb, "• %s - %s\n", slotLine(slot, loc), html.EscapeString(slot.Owner.DisplayName()))
		kb.Row(keyboard.Button(
			fmt.Sprintf("🔄 %s %s", formatting.FormatShortSlotTime(slot.StartTime, slot.EndTime, loc), truncate(slot.Title)),
			Data(PrefixWant, slot.ID),
		))
	}
	sb.WriteString("\nВыберите слот, который хотите получить.")
	kb.Row(keyboard.Button("📋 Мои слоты", CbMySlots))

	return sb.String(), kb.Build()
}

// BuildOfferScreen предлагает выбрать свой слот в обмен на wanted
func BuildOfferScreen(wanted *model.Slot, mine []*model.Slot, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔄 <b>Обмен</b>\n\nВы хотите получить:\n%s - %s\n\n",
		slotLine(wanted, loc), html.EscapeString(wanted.Owner.DisplayName()))

	kb := keyboard.NewBuilder()
	if len(mine) == 0 {
		sb.WriteString("У вас нет слотов, открытых для обмена.\n" +
			"Откройте слот для обмена в /myslots.")
		kb.AddBackButton(CbMarket)
		return sb.String(), kb.Build()
	}

	sb.WriteString("Выберите свой слот, который предложите взамен:")
	for _, slot := range mine {
		kb.Row(keyboard.Button(
			fmt.Sprintf("%s %s", formatting.FormatShortSlotTime(slot.StartTime, slot.EndTime, loc), truncate(slot.Title)),
			Data(PrefixOffer, slot.ID),
		))
	}
	kb.Row(keyboard.CancelButton(CbMarket))

	return sb.String(), kb.Build()
}

// BuildIncomingScreen формирует список запросов, ожидающих ответа пользователя
func BuildIncomingScreen(reqs []*model.SwapRequest, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()

	var sb strings.Builder
	sb.WriteString("📥 <b>Входящие запросы</b>")
	if len(reqs) == 0 {
		sb.WriteString("\n\nНет запросов, ожидающих вашего ответа.")
	} else {
		fmt.Fprintf(&sb, " (%d %s)", len(reqs), formatting.PluralizeRequests(len(reqs)))
		for _, req := range reqs {
			fmt.Fprintf(&sb, "\n\n• %s предлагает %s\n   за ваш %s",
				html.EscapeString(req.Requester.DisplayName()),
				slotLine(req.OfferedSlot, loc),
				slotLine(req.RequestedSlot, loc),
			)
			kb.Row(keyboard.Button("📨 "+requestCaption(req, loc), Data(PrefixRequest, req.ID)))
		}
	}

	kb.Row(
		keyboard.Button("🛒 Маркет", CbMarket),
		keyboard.Button("📋 Мои слоты", CbMySlots),
	)
	return sb.String(), kb.Build()
}

// BuildOutgoingScreen формирует историю запросов, отправленных пользователем
func BuildOutgoingScreen(reqs []*model.SwapRequest, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()

	var sb strings.Builder
	sb.WriteString("📤 <b>Исходящие запросы</b>")
	if len(reqs) == 0 {
		sb.WriteString("\n\nВы ещё не отправили ни одного запроса.")
	} else {
		fmt.Fprintf(&sb, " (%d %s)", len(reqs), formatting.PluralizeRequests(len(reqs)))
		for _, req := range reqs {
			display := formatting.GetSwapStatusDisplay(req.Status)
			fmt.Fprintf(&sb, "\n\n%s %s: ваш %s\n   за %s",
				display.Emoji,
				html.EscapeString(req.Receiver.DisplayName()),
				slotLine(req.OfferedSlot, loc),
				slotLine(req.RequestedSlot, loc),
			)
			kb.Row(keyboard.Button(display.Emoji+" "+requestCaption(req, loc), Data(PrefixRequest, req.ID)))
		}
	}

	kb.Row(
		keyboard.Button("🛒 Маркет", CbMarket),
		keyboard.Button("📋 Мои слоты", CbMySlots),
	)
	return sb.String(), kb.Build()
}

// BuildRequestScreen формирует карточку запроса. Кнопки ответа видит только
// получатель ожидающего запроса.
func BuildRequestScreen(req *model.SwapRequest, viewerID int64, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	display := formatting.GetSwapStatusDisplay(req.Status)

	text := fmt.Sprintf(
		"🔄 <b>Запрос на обмен</b>\n\n"+
			"👤 От: %s\n"+
			"👤 Кому: %s\n"+
			"📤 Предлагает: %s\n"+
			"📥 Просит: %s\n"+
			"📊 Статус: %s %s\n"+
			"📅 Создан: %s",
		html.EscapeString(req.Requester.DisplayName()),
		html.EscapeString(req.Receiver.DisplayName()),
		slotLine(req.OfferedSlot, loc),
		slotLine(req.RequestedSlot, loc),
		display.Emoji, display.Text,
		formatting.FormatDateTime(req.CreatedAt, loc),
	)

	kb := keyboard.NewBuilder()
	back := CbOutgoing
	if req.ReceiverID == viewerID {
		back = CbIncoming
		if req.Status == model.SwapStatusPending {
			kb.Row(
				keyboard.Button("✅ Принять", Data(PrefixAccept, req.ID)),
				keyboard.Button("🚫 Отклонить", Data(PrefixReject, req.ID)),
			)
		}
	}
	kb.AddBackButton(back)

	return text, kb.Build()
}

// BuildNewRequestNotice - уведомление получателю о новом запросе
func BuildNewRequestNotice(req *model.SwapRequest, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf(
		"📨 <b>Новый запрос на обмен</b>\n\n"+
			"%s предлагает %s\n"+
			"за ваш %s",
		html.EscapeString(req.Requester.DisplayName()),
		slotLine(req.OfferedSlot, loc),
		slotLine(req.RequestedSlot, loc),
	)
	kb := keyboard.NewBuilder().
		Row(keyboard.Button("👀 Открыть", Data(PrefixRequest, req.ID)))
	return text, kb.Build()
}

// BuildResolvedNotice - уведомление автору запроса о решении получателя
func BuildResolvedNotice(req *model.SwapRequest, loc *time.Location) string {
	receiver := html.EscapeString(req.Receiver.DisplayName())

	if req.Status == model.SwapStatusAccepted {
		return fmt.Sprintf(
			"✅ %s принял(а) ваш запрос на обмен.\n\n"+
				"Теперь ваш слот: %s",
			receiver,
			slotLine(req.RequestedSlot, loc),
		)
	}
	return fmt.Sprintf(
		"🚫 %s отклонил(а) ваш запрос на обмен.\n\n"+
			"Ваш слот %s снова открыт для обмена.",
		receiver,
		slotLine(req.OfferedSlot, loc),
	)
}

// slotLine - время и название слота, nil для удалённого слота
func slotLine(slot *model.Slot, loc *time.Location) string {
	if slot == nil {
		return "<i>удалённый слот</i>"
	}
	return fmt.Sprintf("%s <b>%s</b>",
		formatting.FormatSlotTime(slot.StartTime, slot.EndTime, loc),
		html.EscapeString(slot.Title),
	)
}

func requestCaption(req *model.SwapRequest, loc *time.Location) string {
	return shortSlot(req.OfferedSlot, loc) + " ⇄ " + shortSlot(req.RequestedSlot, loc)
}

func shortSlot(slot *model.Slot, loc *time.Location) string {
	if slot == nil {
		return "удалён"
	}
	return formatting.FormatShortSlotTime(slot.StartTime, slot.EndTime, loc)
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= buttonTitleLength {
		return s
	}
	return string(runes[:buttonTitleLength-1]) + "…"
}
