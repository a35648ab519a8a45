package ai

import "fmt"

// transactionsPrompt asks the model to turn dictated text into a JSON
// array of transaction drafts. Text mentioning VEICULO or PLACA is a
// workshop service note and becomes a single income entry, anything
// else is one expense per line.
func transactionsPrompt(inputText string) string {
	return fmt.Sprintf(`Analise o texto a seguir. Se contiver palavras como "VEICULO" ou "PLACA", trate como uma única transação de 'income'. Caso contrário, trate cada linha como uma transação separada de 'expense'.
Regras:
1. Para ENTRADA (income): a descrição é a primeira linha. Extraia o valor e a forma de pagamento. Padronize formas como 'cartão 1x', 'debito', 'crédito' para 'Cartão'. Se for DINHEIRO, mantenha "Dinheiro".
2. Para SAÍDA (expense): a descrição é o texto de cada linha antes do valor.
3. Valor deve ser um número, convertendo vírgula em ponto decimal.
4. O tipo da transação deve ser 'income' ou 'expense'.
Responda com um array de objetos JSON. Cada objeto deve ter "type", "description", "amount", e, se for 'income', "paymentMethod".

Texto:
"%s"`, inputText)
}

// serviceOrderPrompt formats a dictated repair note into the workshop's
// fixed service-order layout.
func serviceOrderPrompt(inputText string) string {
	return fmt.Sprintf(`Você é um assistente para uma oficina mecânica especializada em sistemas de direção. Sua tarefa é criar uma nota de serviço concisa e formatada a partir de um texto ditado. A nota deve seguir estritamente o seguinte formato:

[LISTA DE SERVIÇOS/PEÇAS, UM POR LINHA]

VALOR: [VALOR TOTAL DO SERVIÇO]
PAGAMENTO: [FORMA DE PAGAMENTO]
VEICULO: [MODELO DO VEÍCULO]
PLACA: [PLACA DO VEÍCULO]

Exemplo de Saída:
01 REVISÃO NA BOMBA DE DIREÇÃO
01 KIT DE VEDAÇÃO
01 OLEO HID.

VALOR: R$500,00
PAGAMENTO: CARTÃO 4X
VEICULO: LIFAN
PLACA: ous3j11

Analise o texto a seguir e gere a nota. Se alguma informação não for encontrada no texto, use '[A PREENCHER]' no campo correspondente.

Texto ditado: "%s"`, inputText)
}
