// Package llm 是 Chimera 的模型路由核心：把一次聊天轮次路由到
// 对应的外部大模型提供者，组装该轮次所需的上下文，并以统一的
// 响应信封返回结果。
//
// 组成部分：
//   - ModelRegistry：模型标识 → provider tag 的不可变映射
//   - BuildContext：系统提示词 + 激活记忆 + 有界历史的上下文组装
//   - Provider：各提供者适配器的统一契约（见 llm/providers/...）
//   - Dispatcher：解析标识、选择适配器、返回信封
//
// 所有失败路径都折叠进 Response{Status: error}，适配器边界不逃逸
// 任何 error 或 panic；未知模型降级到 echo 而非报错。
package llm
