// 包 workflow 实现从故事文本到表情包序列的端到端流水线。
//
// 流水线分五个阶段推进：叙事分析 → 请求准备 → 批量派发 →
// 结果汇总 → 完成。每次阶段转换后保存一份可序列化的状态快照，
// 供调用方持久化与事后审计。
//
// 阶段级错误（分析失败、全批失败）终止整个运行并进入 Errored；
// 单个图像请求的失败只降级为警告，不会中断其余请求。
package workflow
