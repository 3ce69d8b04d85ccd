package infra

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "payguard"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanPolicyInvalidate — трансляция инвалидации кэша политик.
	// Payload — user_id, чей PolicyConfig был изменен через API.
	// Все инстансы движка, подписанные на канал, выкинут запись из L1.
	RedisChanPolicyInvalidate = RedisNamespace + ":policies:invalidate"
)
