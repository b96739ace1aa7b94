// Copyright (c) MemeFlow Authors.
// Licensed under the MIT License.

/*
Package llm 提供叙事分析使用的聊天补全提供者抽象。

# 概述

工作流的分析阶段将故事文本交给外部语言模型，由模型拆解为九个叙事
节点。本包屏蔽具体服务商的协议差异，对上层暴露统一的请求/响应模型。

# 核心接口

  - Provider：聊天补全提供者接口（Completion + Name）
  - ChatRequest / ChatResponse：请求与响应模型
  - Message / Role：对话消息

# 主要能力

  - OpenAIProvider：Chat Completions API 实现，支持 Organization 头
    与 response_format: json_object
  - MapHTTPError / ReadErrorMessage：HTTP 错误到统一错误码的映射
*/
package llm
