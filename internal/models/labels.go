package models

var roleLabels = map[Role]string{
	RoleUser:  "Usuário",
	RoleAdmin: "Administrador",
}

var columnLabels = map[string]string{
	"select":   "Selecionar",
	"street":   "Rua",
	"city":     "Cidade",
	"region":   "Região",
	"userName": "Nome do Usuário",
	"userCPF":  "CPF",
	"actions":  "Ações",
}

// RoleLabel подпись роли для интерфейса. Пустая роль - "Desconhecido",
// неизвестная возвращается как есть.
func RoleLabel(role Role) string {
	if role == "" {
		return "Desconhecido"
	}
	if label, ok := roleLabels[role]; ok {
		return label
	}
	return string(role)
}

// ColumnLabel подпись колонки таблицы адресов.
func ColumnLabel(column string) string {
	if label, ok := columnLabels[column]; ok {
		return label
	}
	return column
}
