// Copyright (c) MemeFlow Authors.
// Licensed under the MIT License.

/*
Package story 提供叙事分析：把故事文本拆解为恰好九个叙事节点。

每个节点是一对（画面描述，配文），由外部语言模型产出。本包只负责
提示词构造与输出解析，不含任何叙事理解算法。数量不等于九或输出
畸形时返回 INVALID_RESPONSE，调用方不得以不足的节点继续推进。

BuildMemePrompt 把节点确定性地渲染为图像生成提示词，同一节点
总是得到相同的提示词。
*/
package story
