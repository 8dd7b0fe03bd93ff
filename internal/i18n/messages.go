package i18n

// Messages — локализованные ответы бота. Строки заранее экранированы под
// MarkdownV2: каждый зарезервированный символ уже предварён обратным слэшем,
// поэтому шаблоны отправляются как есть, минуя слой экранирования.
type Messages struct {
	Header                 string // заголовок сводки, подставляется в *…*
	TranslationUnavailable string
	Welcome                string
	Subscribed             string
	AlreadySubscribed      string
	Unsubscribed           string
	NotSubscribed          string
	StatusSubscribed       string // %s — код языка
	LanguageUsage          string // %s — список кодов
	LanguageChanged        string // %s — код языка
	LanguageUnknown        string // %s — список кодов
	AdminOnly              string
	BroadcastUsage         string
	BroadcastDone          string // %d — число получателей
	UnknownCommand         string
}

var messagesByCode = map[string]Messages{
	"en": {
		Header:                 `Latest News Digest`,
		TranslationUnavailable: `⚠️ Automatic translation is unavailable right now\. Showing the English original\.`,
		Welcome:                `👋 Welcome\! You are subscribed to the news digest\. The latest issue is on its way\.`,
		Subscribed:             `✅ Subscribed\. You will receive every new digest\.`,
		AlreadySubscribed:      `You are already subscribed\. The next digest will arrive on schedule\.`,
		Unsubscribed:           `👋 You are unsubscribed\. Send /subscribe to come back any time\.`,
		NotSubscribed:          `You are not subscribed yet\. Send /subscribe to join\.`,
		StatusSubscribed:       `📊 You are subscribed\. Digest language: %s\.`,
		LanguageUsage:          `Usage: /language followed by a code\. Available codes: %s\.`,
		LanguageChanged:        `✅ Language updated to %s\. Future digests will arrive in this language\.`,
		LanguageUnknown:        `Unknown language code\. Available codes: %s\.`,
		AdminOnly:              `🚫 This command is restricted to the bot operator\.`,
		BroadcastUsage:         `Usage: /broadcast followed by the message text\.`,
		BroadcastDone:          `📣 Broadcast delivered to %d subscribers\.`,
		UnknownCommand:         `Unknown command\. Available: /subscribe, /unsubscribe, /status, /language\.`,
	},
	"es": {
		Header:                 `Resumen de noticias`,
		TranslationUnavailable: `⚠️ La traducción automática no está disponible ahora\. Mostramos el original en inglés\.`,
		Welcome:                `👋 ¡Bienvenido\! Ya estás suscrito al resumen de noticias\. El último número está en camino\.`,
		Subscribed:             `✅ Suscripción activada\. Recibirás cada nuevo resumen\.`,
		AlreadySubscribed:      `Ya estás suscrito\. El próximo resumen llegará según el horario\.`,
		Unsubscribed:           `👋 Suscripción cancelada\. Envía /subscribe para volver cuando quieras\.`,
		NotSubscribed:          `Aún no estás suscrito\. Envía /subscribe para unirte\.`,
		StatusSubscribed:       `📊 Estás suscrito\. Idioma del resumen: %s\.`,
		LanguageUsage:          `Uso: /language seguido de un código\. Códigos disponibles: %s\.`,
		LanguageChanged:        `✅ Idioma cambiado a %s\. Los próximos resúmenes llegarán en este idioma\.`,
		LanguageUnknown:        `Código de idioma desconocido\. Códigos disponibles: %s\.`,
		AdminOnly:              `🚫 Este comando está reservado al operador del bot\.`,
		BroadcastUsage:         `Uso: /broadcast seguido del texto del mensaje\.`,
		BroadcastDone:          `📣 Difusión entregada a %d suscriptores\.`,
		UnknownCommand:         `Comando desconocido\. Disponibles: /subscribe, /unsubscribe, /status, /language\.`,
	},
	"pt": {
		Header:                 `Resumo de notícias`,
		TranslationUnavailable: `⚠️ A tradução automática está indisponível no momento\. Exibindo o original em inglês\.`,
		Welcome:                `👋 Bem\-vindo\! Você está inscrito no resumo de notícias\. A edição mais recente está a caminho\.`,
		Subscribed:             `✅ Inscrição ativada\. Você receberá cada novo resumo\.`,
		AlreadySubscribed:      `Você já está inscrito\. O próximo resumo chegará no horário\.`,
		Unsubscribed:           `👋 Inscrição cancelada\. Envie /subscribe para voltar quando quiser\.`,
		NotSubscribed:          `Você ainda não está inscrito\. Envie /subscribe para participar\.`,
		StatusSubscribed:       `📊 Você está inscrito\. Idioma do resumo: %s\.`,
		LanguageUsage:          `Uso: /language seguido de um código\. Códigos disponíveis: %s\.`,
		LanguageChanged:        `✅ Idioma alterado para %s\. Os próximos resumos chegarão neste idioma\.`,
		LanguageUnknown:        `Código de idioma desconhecido\. Códigos disponíveis: %s\.`,
		AdminOnly:              `🚫 Este comando é restrito ao operador do bot\.`,
		BroadcastUsage:         `Uso: /broadcast seguido do texto da mensagem\.`,
		BroadcastDone:          `📣 Transmissão entregue a %d inscritos\.`,
		UnknownCommand:         `Comando desconhecido\. Disponíveis: /subscribe, /unsubscribe, /status, /language\.`,
	},
	"fr": {
		Header:                 `Résumé des actualités`,
		TranslationUnavailable: `⚠️ La traduction automatique est indisponible pour le moment\. Voici la version originale en anglais\.`,
		Welcome:                `👋 Bienvenue\! Vous êtes abonné au résumé des actualités\. Le dernier numéro arrive\.`,
		Subscribed:             `✅ Abonnement activé\. Vous recevrez chaque nouveau résumé\.`,
		AlreadySubscribed:      `Vous êtes déjà abonné\. Le prochain résumé arrivera selon le calendrier\.`,
		Unsubscribed:           `👋 Désabonnement effectué\. Envoyez /subscribe pour revenir quand vous voulez\.`,
		NotSubscribed:          `Vous n'êtes pas encore abonné\. Envoyez /subscribe pour nous rejoindre\.`,
		StatusSubscribed:       `📊 Vous êtes abonné\. Langue du résumé: %s\.`,
		LanguageUsage:          `Usage: /language suivi d'un code\. Codes disponibles: %s\.`,
		LanguageChanged:        `✅ Langue remplacée par %s\. Les prochains résumés arriveront dans cette langue\.`,
		LanguageUnknown:        `Code de langue inconnu\. Codes disponibles: %s\.`,
		AdminOnly:              `🚫 Cette commande est réservée à l'opérateur du bot\.`,
		BroadcastUsage:         `Usage: /broadcast suivi du texte du message\.`,
		BroadcastDone:          `📣 Diffusion livrée à %d abonnés\.`,
		UnknownCommand:         `Commande inconnue\. Disponibles: /subscribe, /unsubscribe, /status, /language\.`,
	},
	"de": {
		Header:                 `Nachrichtenüberblick`,
		TranslationUnavailable: `⚠️ Die automatische Übersetzung ist derzeit nicht verfügbar\. Es folgt das englische Original\.`,
		Welcome:                `👋 Willkommen\! Du hast den Nachrichtenüberblick abonniert\. Die aktuelle Ausgabe ist unterwegs\.`,
		Subscribed:             `✅ Abonniert\. Du erhältst jeden neuen Überblick\.`,
		AlreadySubscribed:      `Du bist bereits abonniert\. Der nächste Überblick kommt planmäßig\.`,
		Unsubscribed:           `👋 Abo beendet\. Sende /subscribe, um jederzeit zurückzukommen\.`,
		NotSubscribed:          `Du bist noch nicht abonniert\. Sende /subscribe, um dabei zu sein\.`,
		StatusSubscribed:       `📊 Du bist abonniert\. Sprache des Überblicks: %s\.`,
		LanguageUsage:          `Verwendung: /language gefolgt von einem Code\. Verfügbare Codes: %s\.`,
		LanguageChanged:        `✅ Sprache auf %s umgestellt\. Künftige Überblicke kommen in dieser Sprache\.`,
		LanguageUnknown:        `Unbekannter Sprachcode\. Verfügbare Codes: %s\.`,
		AdminOnly:              `🚫 Dieser Befehl ist dem Betreiber des Bots vorbehalten\.`,
		BroadcastUsage:         `Verwendung: /broadcast gefolgt vom Nachrichtentext\.`,
		BroadcastDone:          `📣 Rundnachricht an %d Abonnenten zugestellt\.`,
		UnknownCommand:         `Unbekannter Befehl\. Verfügbar: /subscribe, /unsubscribe, /status, /language\.`,
	},
	"ru": {
		Header:                 `Сводка новостей`,
		TranslationUnavailable: `⚠️ Автоматический перевод сейчас недоступен\. Показываем оригинал на английском\.`,
		Welcome:                `👋 Добро пожаловать\! Вы подписаны на сводку новостей\. Свежий выпуск уже в пути\.`,
		Subscribed:             `✅ Подписка оформлена\. Вы будете получать каждую новую сводку\.`,
		AlreadySubscribed:      `Вы уже подписаны\. Следующая сводка придёт по расписанию\.`,
		Unsubscribed:           `👋 Подписка отменена\. Отправьте /subscribe, чтобы вернуться в любой момент\.`,
		NotSubscribed:          `Вы ещё не подписаны\. Отправьте /subscribe, чтобы присоединиться\.`,
		StatusSubscribed:       `📊 Вы подписаны\. Язык сводки: %s\.`,
		LanguageUsage:          `Использование: /language и код языка\. Доступные коды: %s\.`,
		LanguageChanged:        `✅ Язык изменён на %s\. Следующие сводки придут на этом языке\.`,
		LanguageUnknown:        `Неизвестный код языка\. Доступные коды: %s\.`,
		AdminOnly:              `🚫 Команда доступна только оператору бота\.`,
		BroadcastUsage:         `Использование: /broadcast и текст сообщения\.`,
		BroadcastDone:          `📣 Рассылка доставлена %d подписчикам\.`,
		UnknownCommand:         `Неизвестная команда\. Доступны: /subscribe, /unsubscribe, /status, /language\.`,
	},
}

// MessagesFor возвращает строки для кода языка, при незнакомом коде —
// канонический набор.
func MessagesFor(code string) Messages {
	if m, ok := messagesByCode[code]; ok {
		return m
	}
	return messagesByCode[Canonical]
}

// all перечисляет все шаблоны набора; используется тестами инварианта
// экранирования.
func (m Messages) all() []string {
	return []string{
		m.Header,
		m.TranslationUnavailable,
		m.Welcome,
		m.Subscribed,
		m.AlreadySubscribed,
		m.Unsubscribed,
		m.NotSubscribed,
		m.StatusSubscribed,
		m.LanguageUsage,
		m.LanguageChanged,
		m.LanguageUnknown,
		m.AdminOnly,
		m.BroadcastUsage,
		m.BroadcastDone,
		m.UnknownCommand,
	}
}
