package types

// Infrastructure action names for log context. Domain handlers and
// services use inline action strings instead.
const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionExternalServiceFailed = "external_service_failed"
)
