// Copyright (c) MemeFlow Authors.
// Licensed under the MIT License.

/*
Package image 提供远端图像后端的统一抽象，支持文生图与基于参考图的编辑。

# 概述

远端 API 的速率与错误行为不透明，本包以防御姿态对待：每次调用可选
客户端侧限速（golang.org/x/time/rate），HTTP 错误统一映射到结构化
错误码（429 → RATE_LIMIT 可重试、401/403 → AUTHENTICATION、
5xx → UPSTREAM_ERROR 可重试），畸形响应映射为 INVALID_RESPONSE。

# 核心接口

  - Provider：Generate（文生图）、Edit（按序参考图编辑）、Name
  - GenerateRequest / EditRequest：请求模型
  - Image：已从 b64_json 解码的原始图像字节

# 实现

  - OpenAIProvider：/v1/images/generations（JSON）与 /v1/images/edits
    （multipart，image[] 按序上传），空提示词在任何网络调用前拒绝
*/
package image
